package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"bitcoin-stats/internal/pipeline"
)

func buildDays(t *testing.T, raw []pipeline.RawSample) ([]pipeline.DailySample, []pipeline.DailyStat) {
	t.Helper()
	records, err := pipeline.Normalize(raw)
	if err != nil {
		t.Fatalf("normalize 失败: %v", err)
	}
	series := pipeline.SampleDaily(records)
	return pipeline.AnnotateMovement(series.Anchors), pipeline.AggregateVolatility(series)
}

var twoDays = []pipeline.RawSample{
	{Timestamp: "1618790400000", Price: "57092.1052704172"},
	{Timestamp: "1618704000000", Price: "60832.9681441684"},
}

func TestMovementJSON(t *testing.T) {
	movement, _ := buildDays(t, twoDays)

	body, err := json.Marshal(Movement(movement))
	if err != nil {
		t.Fatalf("marshal 失败: %v", err)
	}

	want := `[` +
		`{"date":"2021-04-18T00:00:00","price":60832.97,"dayOfWeek":"Sunday","direction":"na","change":"na","highSinceStart":"na","lowSinceStart":"na"},` +
		`{"date":"2021-04-19T00:00:00","price":57092.11,"dayOfWeek":"Monday","direction":"down","change":-3740.86,"highSinceStart":false,"lowSinceStart":true}` +
		`]`
	if string(body) != want {
		t.Fatalf("JSON 不符合预期:\n got %s\nwant %s", body, want)
	}
}

func TestVolatilityJSON(t *testing.T) {
	_, stats := buildDays(t, twoDays)

	body, err := json.Marshal(Volatility(stats))
	if err != nil {
		t.Fatalf("marshal 失败: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		t.Fatalf("unmarshal 失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望 2 行, 实际 %d", len(rows))
	}
	first := rows[0]
	if first["dailyVariance"] != 0.0 || first["volatilityAlert"] != false {
		t.Fatalf("单样本窗口方差应为 0 且无告警: %#v", first)
	}
	if first["dailyAverage"] != 60832.97 {
		t.Fatalf("dailyAverage 不正确: %#v", first["dailyAverage"])
	}
	for _, key := range []string{"date", "price", "dailyAverage", "dailyVariance", "volatilityAlert"} {
		if _, ok := first[key]; !ok {
			t.Fatalf("缺少字段 %s", key)
		}
	}
}

func TestEmptyReportsEncodeAsArrays(t *testing.T) {
	for _, v := range []any{Movement(nil), Volatility(nil)} {
		body, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal 失败: %v", err)
		}
		if string(body) != "[]" {
			t.Fatalf("空报告应编码为 [], 实际 %s", body)
		}
	}
}

func TestFailureEnvelope(t *testing.T) {
	cases := map[Kind]string{
		KindMovement:   `{"status":"Failure while fetching bitcoin data"}`,
		KindVolatility: `{"status":"Failure while fetching bitcoin historical stats data"}`,
	}
	for kind, want := range cases {
		body, _ := json.Marshal(FailureFor(kind))
		if string(body) != want {
			t.Fatalf("%s envelope: got %s want %s", kind, body, want)
		}
	}
}

func TestJoinMismatch(t *testing.T) {
	movement, stats := buildDays(t, twoDays)
	if _, err := Join(movement, stats[:1]); err == nil {
		t.Fatal("长度不一致应报错")
	}
	days, err := Join(movement, stats)
	if err != nil {
		t.Fatalf("Join 不应报错: %v", err)
	}
	if days[0].ChangeText() != NA || days[1].ChangeText() != "-3740.86" {
		t.Fatalf("ChangeText 不正确: %q %q", days[0].ChangeText(), days[1].ChangeText())
	}
	if days[1].HighText() != "false" || days[1].LowText() != "true" {
		t.Fatalf("flag 文本不正确: %q %q", days[1].HighText(), days[1].LowText())
	}
}

func TestWriteCSV(t *testing.T) {
	movement, stats := buildDays(t, twoDays)
	days, err := Join(movement, stats)
	if err != nil {
		t.Fatalf("Join 失败: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, days); err != nil {
		t.Fatalf("WriteCSV 失败: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("读取 CSV 失败: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("期望 header + 2 行, 实际 %d", len(records))
	}
	if records[1][4] != NA || records[2][3] != "down" {
		t.Fatalf("CSV 内容不正确: %v", records)
	}
}

func TestRenderChart(t *testing.T) {
	movement, stats := buildDays(t, twoDays)
	days, _ := Join(movement, stats)

	var buf bytes.Buffer
	if err := renderChart(&buf, days, ChartOptions{Width: 640, Height: 360}); err != nil {
		t.Fatalf("renderChart 失败: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatal("输出应为 PNG")
	}
}

func TestWritePNGFileNeedsTwoDays(t *testing.T) {
	if err := WritePNGFile(t.TempDir()+"/c.png", []Day{{}}, ChartOptions{}); err == nil {
		t.Fatal("单日数据应报错")
	}
}
