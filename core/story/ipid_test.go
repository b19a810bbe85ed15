package story

import "testing"

func TestDeriveIPID(t *testing.T) {
	contract := "0xAbCd000000000000000000000000000000001234"

	got, err := DeriveIPID(contract, 7)
	if err != nil {
		t.Fatalf("DeriveIPID(7): %v", err)
	}
	want := "0xabcd000000000000000000000000000000001234000000000000000000000007"
	if got != want {
		t.Errorf("DeriveIPID(7) = %q, want %q", got, want)
	}

	// 确定性：相同输入永远得到相同输出
	if again, _ := DeriveIPID(contract, 7); again != got {
		t.Errorf("DeriveIPID not deterministic: %q vs %q", got, again)
	}

	// 大 tokenId 的十六进制表示
	got, err = DeriveIPID(contract, 255)
	if err != nil {
		t.Fatalf("DeriveIPID(255): %v", err)
	}
	want = "0xabcd0000000000000000000000000000000012340000000000000000000000ff"
	if got != want {
		t.Errorf("DeriveIPID(255) = %q, want %q", got, want)
	}

	// 无0x前缀的合约地址同样处理
	noPrefix, _ := DeriveIPID("abcd000000000000000000000000000000001234", 7)
	withPrefix, _ := DeriveIPID(contract, 7)
	if noPrefix != withPrefix {
		t.Errorf("prefix handling differs: %q", noPrefix)
	}
}

func TestDeriveIPIDRejectsNegative(t *testing.T) {
	if _, err := DeriveIPID("0x1234", -1); err == nil {
		t.Error("DeriveIPID accepted a negative token id")
	}
}

func TestKeccak256Hex(t *testing.T) {
	// Keccak-256 标准测试向量
	cases := []struct {
		in   string
		want string
	}{
		{"", "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"abc", "0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, tc := range cases {
		if got := keccak256Hex([]byte(tc.in)); got != tc.want {
			t.Errorf("keccak256Hex(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
