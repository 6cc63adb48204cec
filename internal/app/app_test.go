package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"bitcoin-stats/internal/config"
	"bitcoin-stats/internal/report"
	"bitcoin-stats/internal/service"
)

const sundayMs = int64(1618704000000) // 2021-04-18T00:00:00Z

func writeHistory(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	return path
}

func twoDayDocument() string {
	return fmt.Sprintf(`{"status":"success","data":{"change":-6.1,"history":[
		{"price":"60832.9681441684","timestamp":%d},
		{"price":"61010.55","timestamp":%d},
		{"price":"57092.1052704172","timestamp":%d}
	]}}`, sundayMs, sundayMs+3600_000, sundayMs+86_400_000)
}

func newTestApp(t *testing.T, historyPath string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		History: config.HistoryConfig{AssetID: 1, Timeframe: "30d"},
		Source: config.SourceConfig{
			Driver: config.DriverFile,
			File:   config.FileConfig{Path: historyPath},
		},
		Export: config.ExportConfig{ChartWidth: 640, ChartHeight: 360},
	}
	out := &bytes.Buffer{}
	a := NewApp(cfg, zerolog.Nop())
	a.Out = out
	return a, out
}

func TestReportMovement(t *testing.T) {
	a, out := newTestApp(t, writeHistory(t, twoDayDocument()))

	if err := a.Report(context.Background(), report.KindMovement, service.Query{}); err != nil {
		t.Fatalf("报告不应报错: %v", err)
	}

	var rows []report.MovementRow
	if err := json.Unmarshal(out.Bytes(), &rows); err != nil {
		t.Fatalf("输出应为 JSON 数组: %v (%s)", err, out.String())
	}
	if len(rows) != 2 || rows[1].Direction != "down" || rows[1].Change != -3740.86 {
		t.Fatalf("movement 报告错误: %+v", rows)
	}
}

func TestReportFailurePrintsEnvelope(t *testing.T) {
	a, out := newTestApp(t, writeHistory(t, `{"status":"success","data":{"history":[]}}`))

	if err := a.Report(context.Background(), report.KindVolatility, service.Query{}); err != nil {
		t.Fatalf("失败时应输出信封而非报错: %v", err)
	}
	var body report.Failure
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("输出应为 JSON 对象: %v", err)
	}
	if body != report.FailureFor(report.KindVolatility) {
		t.Fatalf("信封内容错误: %+v", body)
	}
}

func TestReportUnknownKind(t *testing.T) {
	a, _ := newTestApp(t, writeHistory(t, twoDayDocument()))
	if err := a.Report(context.Background(), report.Kind("candles"), service.Query{}); err == nil {
		t.Fatal("未知报告类型应报错")
	}
}

func TestShow(t *testing.T) {
	a, out := newTestApp(t, writeHistory(t, twoDayDocument()))

	if err := a.Show(context.Background(), service.Query{}); err != nil {
		t.Fatalf("show 不应报错: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("期望表头加 2 行, 实际 %d 行:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[2], "2021-04-19T00:00:00") || !strings.Contains(lines[2], "-3740.86") {
		t.Fatalf("第二天行内容错误: %s", lines[2])
	}
}

func TestExport(t *testing.T) {
	a, _ := newTestApp(t, writeHistory(t, twoDayDocument()))
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out", "daily.csv")
	pngPath := filepath.Join(dir, "out", "daily.png")

	if err := a.Export(context.Background(), ExportOptions{CSVPath: csvPath, PNGPath: pngPath}); err != nil {
		t.Fatalf("导出不应报错: %v", err)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("读取 CSV 失败: %v", err)
	}
	if got := strings.Count(strings.TrimSpace(string(data)), "\n"); got != 2 {
		t.Fatalf("CSV 应有表头加 2 行, 实际换行数 %d", got)
	}
	if info, err := os.Stat(pngPath); err != nil || info.Size() == 0 {
		t.Fatalf("PNG 应已生成: %v", err)
	}

	if err := a.Export(context.Background(), ExportOptions{}); err == nil {
		t.Fatal("未指定输出路径应报错")
	}
}

func TestWatchOnce(t *testing.T) {
	a, _ := newTestApp(t, writeHistory(t, twoDayDocument()))
	a.Config.Watch = config.WatchConfig{Interval: time.Minute}

	if err := a.Watch(context.Background(), WatchOptions{Once: true}); err != nil {
		t.Fatalf("单次检查不应报错: %v", err)
	}
}

func TestSimulateAlertRequiresAlerting(t *testing.T) {
	a, _ := newTestApp(t, writeHistory(t, twoDayDocument()))
	if err := a.SimulateAlert(context.Background(), service.Query{}); err == nil {
		t.Fatal("alerting 未启用时应报错")
	}

	a.Config.Alerting.Enabled = true
	if err := a.SimulateAlert(context.Background(), service.Query{}); err != nil {
		t.Fatalf("日志告警通道应成功: %v", err)
	}
}

func TestUnknownDriver(t *testing.T) {
	a, _ := newTestApp(t, "")
	a.Config.Source.Driver = "ftp"
	if err := a.Show(context.Background(), service.Query{}); err == nil {
		t.Fatal("未知数据源应报错")
	}
}
