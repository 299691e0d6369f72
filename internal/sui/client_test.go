// FilePath: internal/sui/client_test.go
package sui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/verdantlabs/chainsense/internal/errors"
)

// rpcStub serves canned JSON-RPC results keyed by method name
func rpcStub(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad rpc request: %v", err)
		}
		body, ok := results[req.Method]
		if !ok {
			t.Errorf("unexpected rpc method %s", req.Method)
			body = `{"error":{"code":-32601,"message":"method not found"}}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,` + body + `}`))
	}))
}

func TestGetCoins(t *testing.T) {
	srv := rpcStub(t, map[string]string{
		"suix_getCoins": `"result":{"data":[
			{"coinObjectId":"0xc01","version":"42","digest":"` + zeroDigest + `","balance":"1000000000"},
			{"coinObjectId":"0xc02","version":"7","digest":"` + zeroDigest + `","balance":"5"}
		]}`,
	})
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	coins, err := client.GetCoins(context.Background(), testSender)
	if err != nil {
		t.Fatalf("GetCoins failed: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("got %d coins, want 2", len(coins))
	}

	ref, err := coins[0].Ref()
	if err != nil {
		t.Fatalf("Ref failed: %v", err)
	}
	if ref.ObjectID != "0xc01" || ref.Version != 42 || ref.Digest != zeroDigest {
		t.Errorf("ref = %+v", ref)
	}
}

func TestGetObjectNotFound(t *testing.T) {
	srv := rpcStub(t, map[string]string{
		"sui_getObject": `"result":{"error":{"code":"notExists"}}`,
	})
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.GetObject(context.Background(), "0xdead")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if apiErr := errors.AsAPIError(err); apiErr.Type != errors.ErrorTypeNotFound {
		t.Errorf("error type = %s, want %s", apiErr.Type, errors.ErrorTypeNotFound)
	}
}

func TestGetObjectContent(t *testing.T) {
	srv := rpcStub(t, map[string]string{
		"sui_getObject": `"result":{"data":{
			"objectId":"0xabc","version":"99","digest":"` + zeroDigest + `",
			"content":{"type":"0x1::test::Obj","fields":{"value":"7"}}
		}}`,
	})
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	obj, err := client.GetObject(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("GetObject failed: %v", err)
	}
	if obj.ObjectID != "0xabc" || obj.Version != 99 || obj.Type != "0x1::test::Obj" {
		t.Errorf("object = %+v", obj)
	}
}

func TestGetReferenceGasPrice(t *testing.T) {
	srv := rpcStub(t, map[string]string{
		"suix_getReferenceGasPrice": `"result":"750"`,
	})
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	price, err := client.GetReferenceGasPrice(context.Background())
	if err != nil {
		t.Fatalf("GetReferenceGasPrice failed: %v", err)
	}
	if price != 750 {
		t.Errorf("price = %d, want 750", price)
	}
}

func TestExecutePreservesLedgerRejection(t *testing.T) {
	srv := rpcStub(t, map[string]string{
		"sui_executeTransactionBlock": `"error":{"code":-32002,"message":"Transaction validator signing failed: object version mismatch"}`,
	})
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.ExecuteTransactionBlock(context.Background(), "AAA=", "sig")
	if err == nil {
		t.Fatal("expected rejection")
	}
	apiErr := errors.AsAPIError(err)
	if apiErr.Type != errors.ErrorTypeRejected {
		t.Fatalf("error type = %s, want %s", apiErr.Type, errors.ErrorTypeRejected)
	}
	if apiErr.Message != "Transaction validator signing failed: object version mismatch" {
		t.Errorf("ledger message not preserved verbatim: %q", apiErr.Message)
	}
	if errors.IsRetryable(err) {
		t.Error("rejections must not be retryable")
	}
}

func TestExecuteTransportFailure(t *testing.T) {
	srv := rpcStub(t, map[string]string{})
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second)
	_, err := client.ExecuteTransactionBlock(context.Background(), "AAA=", "sig")
	if err == nil {
		t.Fatal("expected transport error")
	}
	apiErr := errors.AsAPIError(err)
	if apiErr.Type != errors.ErrorTypeTransport {
		t.Fatalf("error type = %s, want %s", apiErr.Type, errors.ErrorTypeTransport)
	}
	if !errors.IsRetryable(err) {
		t.Error("transport failures should be retryable")
	}
}

func TestExecuteSuccess(t *testing.T) {
	srv := rpcStub(t, map[string]string{
		"sui_executeTransactionBlock": `"result":{
			"digest":"8exSFdC2YF6dTWYtTDRWrXpTxsQs1pL7vCnM4yQaTbWk",
			"effects":{"status":{"status":"success"}}
		}`,
	})
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.ExecuteTransactionBlock(context.Background(), "AAA=", "sig")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	status, statusErr := result.Status()
	if status != "success" || statusErr != "" {
		t.Errorf("status = %q/%q, want success", status, statusErr)
	}
}
