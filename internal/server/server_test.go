package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"bitcoin-stats/internal/config"
	"bitcoin-stats/internal/pipeline"
	"bitcoin-stats/internal/service"
	"bitcoin-stats/internal/source"
)

type staticSource struct {
	samples []pipeline.RawSample
	err     error
	assetID int
	tf      string
}

func (s *staticSource) FetchHistory(_ context.Context, assetID int, timeframe string) ([]pipeline.RawSample, error) {
	s.assetID = assetID
	s.tf = timeframe
	return s.samples, s.err
}

const sundayMs = int64(1618704000000) // 2021-04-18T00:00:00Z

func twoAnchors() []pipeline.RawSample {
	return []pipeline.RawSample{
		{Timestamp: strconv.FormatInt(sundayMs+86_400_000, 10), Price: "57092.1052704172"},
		{Timestamp: strconv.FormatInt(sundayMs, 10), Price: "60832.9681441684"},
	}
}

func newTestServer(src source.HistorySource) *Server {
	cfg := &config.Config{History: config.HistoryConfig{AssetID: 1, Timeframe: "30d"}}
	svc := service.New(cfg, src, nil, nil, zerolog.Nop())
	return New(Options{Mode: gin.TestMode}, svc, zerolog.Nop())
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("%s 应返回 200, 实际 %d", target, rec.Code)
	}
	return rec
}

func TestHealth(t *testing.T) {
	src := &staticSource{}
	rec := get(t, newTestServer(src), "/")
	if rec.Body.String() != "Success!" {
		t.Fatalf("健康检查返回错误: %q", rec.Body.String())
	}
	if src.assetID != 0 {
		t.Fatal("健康检查不应访问数据源")
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("应返回 X-Request-ID")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	newTestServer(&staticSource{}).Handler().ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) != "abc-123" {
		t.Fatalf("应回显请求 id, 实际 %q", rec.Header().Get(requestIDHeader))
	}
}

func TestMovementEndpoint(t *testing.T) {
	src := &staticSource{samples: twoAnchors()}
	rec := get(t, newTestServer(src), "/history/bitcoin-data")

	if src.assetID != 1 || src.tf != "30d" {
		t.Fatalf("应使用默认参数: asset=%d tf=%s", src.assetID, src.tf)
	}

	var rows []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("响应应为 JSON 数组: %v (%s)", err, rec.Body.String())
	}
	if len(rows) != 2 {
		t.Fatalf("期望 2 行, 实际 %d", len(rows))
	}

	first := rows[0]
	if first["date"] != "2021-04-18T00:00:00" || first["dayOfWeek"] != "Sunday" || first["price"] != 60832.97 {
		t.Fatalf("首行错误: %v", first)
	}
	for _, field := range []string{"direction", "change", "highSinceStart", "lowSinceStart"} {
		if first[field] != "na" {
			t.Fatalf("首行 %s 应为 na, 实际 %v", field, first[field])
		}
	}

	second := rows[1]
	if second["direction"] != "down" || second["change"] != -3740.86 {
		t.Fatalf("次行应下跌 3740.86: %v", second)
	}
	if second["highSinceStart"] != false || second["lowSinceStart"] != true {
		t.Fatalf("次行高低标记错误: %v", second)
	}
}

func TestVolatilityEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&staticSource{samples: twoAnchors()}), "/history/bitcoin-stats?assetId=1&timeframe=7d")

	var rows []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("响应应为 JSON 数组: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望 2 行, 实际 %d", len(rows))
	}
	if rows[0]["dailyVariance"] != 0.0 || rows[0]["volatilityAlert"] != false {
		t.Fatalf("单样本日方差应为 0 且不告警: %v", rows[0])
	}
	if rows[0]["dailyAverage"] != 60832.97 {
		t.Fatalf("单样本日均价应等于开盘价: %v", rows[0])
	}
}

func TestFailureEnvelopes(t *testing.T) {
	cases := []struct {
		name   string
		src    *staticSource
		target string
		want   string
	}{
		{"movement empty", &staticSource{err: source.ErrEmptyResult}, "/history/bitcoin-data", "Failure while fetching bitcoin data"},
		{"stats empty", &staticSource{err: source.ErrEmptyResult}, "/history/bitcoin-stats", "Failure while fetching bitcoin historical stats data"},
		{"movement unavailable", &staticSource{err: source.ErrSourceUnavailable}, "/history/bitcoin-data", "Failure while fetching bitcoin data"},
		{"stats bad price", &staticSource{samples: []pipeline.RawSample{{Timestamp: "1618704000000", Price: "abc"}}}, "/history/bitcoin-stats", "Failure while fetching bitcoin historical stats data"},
		{"bad asset id", &staticSource{samples: twoAnchors()}, "/history/bitcoin-data?assetId=zero", "Failure while fetching bitcoin data"},
		{"bad timeframe", &staticSource{samples: twoAnchors()}, "/history/bitcoin-stats?timeframe=2w", "Failure while fetching bitcoin historical stats data"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, newTestServer(tc.src), tc.target)

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("失败响应应为 JSON 对象: %v (%s)", err, rec.Body.String())
			}
			if len(body) != 1 || body["status"] != tc.want {
				t.Fatalf("失败响应错误: %v", body)
			}
		})
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := New(Options{Addr: "127.0.0.1:0", Mode: gin.TestMode, ShutdownTimeout: time.Second}, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("取消后应正常退出: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run 未在取消后退出")
	}
}
