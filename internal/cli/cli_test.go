package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "report", "show", "export", "watch", "simulate-alert", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("命令 %s 未注册: %v", name, err)
		}
	}
}

func TestReportArgs(t *testing.T) {
	if err := reportCmd.Args(reportCmd, []string{"movement"}); err != nil {
		t.Fatalf("movement 应合法: %v", err)
	}
	if err := reportCmd.Args(reportCmd, []string{"candles"}); err == nil {
		t.Fatal("未知报告类型应被拒绝")
	}
	if err := reportCmd.Args(reportCmd, nil); err == nil {
		t.Fatal("缺少参数应被拒绝")
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--config", "/nonexistent/config.yaml"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version 不应加载配置: %v", err)
	}
	if !strings.HasPrefix(out.String(), "btcstats ") {
		t.Fatalf("版本输出错误: %q", out.String())
	}
}
