// FilePath: api/api.router_test.go
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/verdantlabs/chainsense/internal/chainservice"
	"github.com/verdantlabs/chainsense/internal/config"
	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/monitoring"
	"github.com/verdantlabs/chainsense/internal/sui"
	"github.com/verdantlabs/chainsense/internal/throttle"
)

const (
	testPackageID = "0x1a2b3c4d5e6f00112233445566778899aabbccddeeff00112233445566778899"
	testSender    = "0x99887766554433221100ffeeddccbbaa99887766554433221100ffeeddccbbaa"
	zeroDigest    = "11111111111111111111111111111111"
)

type fakeLedger struct {
	execResult *sui.ExecutionResult
	execErr    error
}

func (f *fakeLedger) GetObject(ctx context.Context, id string) (*sui.ObjectData, error) {
	return nil, errors.NewNotFoundError("object "+id+" not found", nil)
}

func (f *fakeLedger) GetCoins(ctx context.Context, owner string) ([]sui.Coin, error) {
	return []sui.Coin{
		{CoinObjectID: "0xc01", Version: "42", Digest: zeroDigest, Balance: "1000000000"},
	}, nil
}

func (f *fakeLedger) GetOwnedObjects(ctx context.Context, owner, structType string) ([]*sui.ObjectData, error) {
	return nil, nil
}

func (f *fakeLedger) GetReferenceGasPrice(ctx context.Context) (uint64, error) {
	return 750, nil
}

func (f *fakeLedger) ExecuteTransactionBlock(ctx context.Context, txBytesB64, signature string) (*sui.ExecutionResult, error) {
	return f.execResult, f.execErr
}

func newTestRouter(limit int) *Router {
	ledger := &fakeLedger{
		execResult: &sui.ExecutionResult{
			Digest:  "HjkPqW3vA1",
			Effects: json.RawMessage(`{"status":{"status":"success"}}`),
		},
	}
	cfg := config.SuiConfig{
		Network:             "testnet",
		PackageID:           testPackageID,
		SenderAddress:       testSender,
		ClockObjectID:       "0x6",
		ClockInitialVersion: 1,
		GasBudget:           100000000,
		GasPrice:            1000,
		ExplorerBase:        "https://suiscan.xyz",
	}
	metrics := monitoring.NewService()
	svc := chainservice.New(ledger, nil, cfg, config.DeviceConfig{
		ID: "esp32-device", SensorType: "soil",
	}, nil, metrics)
	limiter := throttle.NewLimiter(throttle.NewMemoryStore(), limit, time.Minute, nil)
	return NewRouter(svc, limiter, metrics)
}

func postJSON(t *testing.T, router *Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return out
}

func validBuildBody() map[string]any {
	return map[string]any{
		"temperature": 2550,
		"humidity":    6050,
		"ec":          1500,
		"ph":          680,
		"deviceId":    "esp32-device",
		"sensorType":  "soil",
		"location":    "greenhouse-3",
	}
}

func TestBuildEndpoint(t *testing.T) {
	router := newTestRouter(100)

	rec := postJSON(t, router, "/api/v1/tx/build", validBuildBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse(t, rec)
	if resp["success"] != true {
		t.Error("success flag missing")
	}
	if s, _ := resp["instructions"].(string); s == "" {
		t.Error("instructions missing")
	}

	txHex, ok := resp["txBytes"].(string)
	if !ok || txHex == "" {
		t.Fatal("txBytes missing from response")
	}
	txBytes, err := hex.DecodeString(txHex)
	if err != nil {
		t.Fatalf("txBytes is not hex: %v", err)
	}
	call, err := sui.DecodeSensorTransaction(txBytes)
	if err != nil {
		t.Fatalf("returned bytes do not decode: %v", err)
	}
	if call.Reading.TemperatureScaled != 2550 {
		t.Errorf("encoded temperature = %d", call.Reading.TemperatureScaled)
	}
}

func TestBuildEndpointValidation(t *testing.T) {
	router := newTestRouter(100)

	body := validBuildBody()
	body["temperature"] = 10001
	rec := postJSON(t, router, "/api/v1/tx/build", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["success"] != false {
		t.Error("failure envelope must carry success:false")
	}
	if resp["error"] == nil {
		t.Error("failure envelope must carry an error message")
	}
}

func TestBuildEndpointMissingFields(t *testing.T) {
	router := newTestRouter(100)

	rec := postJSON(t, router, "/api/v1/tx/build", map[string]any{"temperature": 2550})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	details, ok := resp["details"].([]any)
	if !ok || len(details) == 0 {
		t.Errorf("missing fields not listed in details: %v", resp)
	}
}

func TestSubmitEndpointBadHex(t *testing.T) {
	router := newTestRouter(100)

	rec := postJSON(t, router, "/api/v1/tx/submit", map[string]any{
		"txBytes":   "zz-not-hex",
		"signature": "sig",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBuildThenSubmit(t *testing.T) {
	router := newTestRouter(100)

	build := postJSON(t, router, "/api/v1/tx/build", validBuildBody())
	if build.Code != http.StatusOK {
		t.Fatalf("build status = %d", build.Code)
	}
	txHex := decodeResponse(t, build)["txBytes"].(string)

	submit := postJSON(t, router, "/api/v1/tx/submit", map[string]any{
		"txBytes":   txHex,
		"signature": base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 97)),
	})
	if submit.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body = %s", submit.Code, submit.Body.String())
	}
	resp := decodeResponse(t, submit)
	if resp["digest"] != "HjkPqW3vA1" {
		t.Errorf("digest = %v", resp["digest"])
	}
	if resp["explorerUrl"] != "https://suiscan.xyz/testnet/tx/HjkPqW3vA1" {
		t.Errorf("explorerUrl = %v", resp["explorerUrl"])
	}
}

func TestDirectEndpointWithoutSigner(t *testing.T) {
	router := newTestRouter(100)

	rec := postJSON(t, router, "/api/v1/readings", map[string]any{
		"temperature": 25.5,
		"humidity":    60.5,
		"ec":          1500,
		"ph":          6.8,
		"deviceId":    "web-client",
		"sensorType":  "hydroponic",
	})
	// No signer key is configured in the test, so the direct path reports
	// a configuration failure rather than a validation one.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500, body = %s", rec.Code, rec.Body.String())
	}
}

func TestThrottleGuardsMutatingRoutes(t *testing.T) {
	router := newTestRouter(3)

	for i := 0; i < 3; i++ {
		rec := postJSON(t, router, "/api/v1/tx/build", validBuildBody())
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d throttled below the ceiling", i+1)
		}
	}

	rec := postJSON(t, router, "/api/v1/tx/build", validBuildBody())
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["success"] != false || resp["error"] == nil {
		t.Errorf("throttle response = %v, want uniform failure envelope", resp)
	}

	// Read-only routes are not throttled
	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/readings", nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	if getRec.Code == http.StatusTooManyRequests {
		t.Error("read-only route must not be throttled")
	}
}

func TestGasContextEndpoint(t *testing.T) {
	router := newTestRouter(100)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tx/context?senderAddress="+testSender, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	ctx, ok := resp["context"].(map[string]any)
	if !ok {
		t.Fatalf("context missing: %v", resp)
	}
	if ctx["senderAddress"] != testSender {
		t.Errorf("senderAddress = %v", ctx["senderAddress"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(100)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
