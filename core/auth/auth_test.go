package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret-pass" {
		t.Error("hash equals plaintext")
	}
	if !VerifyPassword("secret-pass", hash) {
		t.Error("VerifyPassword rejected correct password")
	}
	if VerifyPassword("wrong-pass", hash) {
		t.Error("VerifyPassword accepted wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateToken(42, "alice")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenInvalid(t *testing.T) {
	SetSecret("test-secret")
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Error("ParseToken accepted garbage")
	}

	// 换密钥后旧token失效
	token, err := GenerateToken(1, "bob")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	SetSecret("different-secret")
	if _, err := ParseToken(token); err == nil {
		t.Error("ParseToken accepted token signed with old secret")
	}
}
