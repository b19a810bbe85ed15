package story

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"StoryFM/config"
)

const testContract = "0x1234567890abcdef1234567890abcdef12345678"

func testClient(baseURL, signer string) *Client {
	return NewClient(&config.Config{
		StoryAPIURL:        baseURL,
		StoryChainID:       "aeneid",
		NFTContractAddress: testContract,
		WIPTokenAddress:    "0x1514000000000000000000000000000000000000",
		SignerAddress:      signer,
		GatewayURL:         "https://gateway.example/ipfs",
	})
}

func TestMintAndRegister(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ip-asset/mint-and-register" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("X-Chain-Id") != "aeneid" {
			t.Errorf("X-Chain-Id = %q", r.Header.Get("X-Chain-Id"))
		}
		if r.Header.Get("X-Signer") == "" {
			t.Error("X-Signer header missing")
		}
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"txHash":  "0xdeadbeef",
			"tokenId": 42,
			"ipId":    "0xipid",
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	asset, err := c.MintAndRegister(context.Background(), "QmManifest")
	if err != nil {
		t.Fatalf("MintAndRegister: %v", err)
	}
	if asset.TokenID != 42 || asset.IPID != "0xipid" || asset.TxHash != "0xdeadbeef" {
		t.Errorf("asset = %+v", asset)
	}

	if captured["spgNftContract"] != testContract {
		t.Errorf("spgNftContract = %v", captured["spgNftContract"])
	}
	if captured["allowDuplicates"] != true {
		t.Error("allowDuplicates not set")
	}
	meta := captured["ipMetadata"].(map[string]interface{})
	if meta["nftMetadataURI"] != "https://gateway.example/ipfs/QmManifest" {
		t.Errorf("nftMetadataURI = %v", meta["nftMetadataURI"])
	}
	if meta["ipMetadataHash"] != emptyIPMetadataHash {
		t.Errorf("ipMetadataHash = %v", meta["ipMetadataHash"])
	}
	if meta["nftMetadataHash"] != keccak256Hex([]byte("https://gateway.example/ipfs/QmManifest")) {
		t.Errorf("nftMetadataHash = %v", meta["nftMetadataHash"])
	}
}

func TestMintAndRegisterDerivesIPID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// sidecar 只返回tokenId，不返回ipId
		json.NewEncoder(w).Encode(map[string]interface{}{
			"txHash":  "0xdeadbeef",
			"tokenId": 5,
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	asset, err := c.MintAndRegister(context.Background(), "QmManifest")
	if err != nil {
		t.Fatalf("MintAndRegister: %v", err)
	}
	if want, _ := DeriveIPID(testContract, 5); asset.IPID != want {
		t.Errorf("IPID = %q, want derived fallback %q", asset.IPID, want)
	}
}

func TestMintAndRegisterNotConnected(t *testing.T) {
	c := testClient("http://localhost:0", "")
	_, err := c.MintAndRegister(context.Background(), "QmManifest")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("error = %v, want ErrNotConnected", err)
	}
}

func TestMintAndRegisterSidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "execution reverted"})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	_, err := c.MintAndRegister(context.Background(), "QmManifest")
	if !errors.Is(err, ErrMintFailed) {
		t.Errorf("error = %v, want ErrMintFailed", err)
	}
}

func TestRegisterCommercialLicense(t *testing.T) {
	var attachReq map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/license/register-commercial-use":
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			// 1.5 个代币的wei表示
			if req["defaultMintingFee"] != "1500000000000000000" {
				t.Errorf("defaultMintingFee = %q", req["defaultMintingFee"])
			}
			if req["currency"] != "0x1514000000000000000000000000000000000000" {
				t.Errorf("currency = %q", req["currency"])
			}
			json.NewEncoder(w).Encode(map[string]string{"licenseTermsId": "99", "txHash": "0x1"})
		case "/license/attach":
			json.NewDecoder(r.Body).Decode(&attachReq)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("{}"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	termsID, err := c.RegisterCommercialLicense(context.Background(), "0xip", "1.5")
	if err != nil {
		t.Fatalf("RegisterCommercialLicense: %v", err)
	}
	if termsID != "99" {
		t.Errorf("termsID = %q, want 99", termsID)
	}
	if attachReq["ipId"] != "0xip" || attachReq["licenseTermsId"] != "99" {
		t.Errorf("attach request = %v", attachReq)
	}
}

func TestRegisterCommercialLicenseInvalidFee(t *testing.T) {
	c := testClient("http://localhost:0", "0xsigner")
	for _, fee := range []string{"0", "-1", ""} {
		if _, err := c.RegisterCommercialLicense(context.Background(), "0xip", fee); !errors.Is(err, ErrInvalidFee) {
			t.Errorf("fee %q: error = %v, want ErrInvalidFee", fee, err)
		}
	}
}

func TestRegisterCommercialLicenseAttachFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/license/register-commercial-use":
			json.NewEncoder(w).Encode(map[string]string{"licenseTermsId": "99"})
		case "/license/attach":
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": "attach reverted"})
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	_, err := c.RegisterCommercialLicense(context.Background(), "0xip", "1")
	if !errors.Is(err, ErrLicenseRegistration) {
		t.Errorf("error = %v, want ErrLicenseRegistration", err)
	}
}

func TestResolveIPIDFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	got, err := c.ResolveIPID(context.Background(), 3)
	if err != nil {
		t.Fatalf("ResolveIPID: %v", err)
	}
	if want, _ := DeriveIPID(testContract, 3); got != want {
		t.Errorf("ResolveIPID = %q, want derived fallback %q", got, want)
	}
}

func TestResolveIPIDNegativeToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	if _, err := c.ResolveIPID(context.Background(), -1); err == nil {
		t.Error("ResolveIPID accepted a negative token id")
	}
}

func TestResolveIPIDExplicit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ip-asset/register" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"ipId": "0xexplicit"})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	got, err := c.ResolveIPID(context.Background(), 3)
	if err != nil {
		t.Fatalf("ResolveIPID: %v", err)
	}
	if got != "0xexplicit" {
		t.Errorf("ResolveIPID = %q, want 0xexplicit", got)
	}
}

func TestMintLicenseTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if req["amount"] != float64(1) {
			t.Errorf("amount = %v, want 1", req["amount"])
		}
		if req["receiver"] != "0xreceiver" {
			t.Errorf("receiver = %v", req["receiver"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"txHash": "0xtx", "licenseTokenIds": []int64{7}})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	txHash, err := c.MintLicenseTokens(context.Background(), "0xip", "99", "0xreceiver")
	if err != nil {
		t.Fatalf("MintLicenseTokens: %v", err)
	}
	if txHash != "0xtx" {
		t.Errorf("txHash = %q", txHash)
	}
}

func TestReadsWithoutSigner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/nft/"+testContract+"/total-supply":
			json.NewEncoder(w).Encode(map[string]int64{"totalSupply": 3})
		case r.URL.Path == "/nft/"+testContract+"/token/2/uri":
			json.NewEncoder(w).Encode(map[string]string{"tokenUri": "https://gateway.example/ipfs/QmX"})
		case r.URL.Path == "/nft/"+testContract+"/token/2/owner":
			json.NewEncoder(w).Encode(map[string]string{"owner": "0xowner"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	// 只读查询不需要签名会话
	c := testClient(srv.URL, "")
	total, err := c.TotalSupply(context.Background())
	if err != nil || total != 3 {
		t.Errorf("TotalSupply = %d, %v", total, err)
	}
	uri, err := c.TokenURI(context.Background(), 2)
	if err != nil || uri != "https://gateway.example/ipfs/QmX" {
		t.Errorf("TokenURI = %q, %v", uri, err)
	}
	owner, err := c.OwnerOf(context.Background(), 2)
	if err != nil || owner != "0xowner" {
		t.Errorf("OwnerOf = %q, %v", owner, err)
	}
}

func TestWIPSwap(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["amount"] != "2000000000000000000" {
			t.Errorf("amount = %q, want wei string", req["amount"])
		}
		json.NewEncoder(w).Encode(map[string]string{"txHash": "0xswap"})
	}))
	defer srv.Close()

	c := testClient(srv.URL, "0xsigner")
	if _, err := c.Deposit(context.Background(), "2"); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if _, err := c.Withdraw(context.Background(), "2"); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/wip/deposit" || paths[1] != "/wip/withdraw" {
		t.Errorf("paths = %v", paths)
	}
}
