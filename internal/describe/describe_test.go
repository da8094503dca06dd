package describe

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"crest/internal/analysis/indicator"
	"crest/internal/analysis/pattern"
	"crest/internal/gateway/provider"
)

type fakeProvider struct {
	id   string
	fail bool
	seen provider.ChatPayload
}

func (p *fakeProvider) ID() string    { return p.id }
func (p *fakeProvider) Enabled() bool { return true }
func (p *fakeProvider) Call(_ context.Context, payload provider.ChatPayload) (string, error) {
	p.seen = payload
	if p.fail {
		return "", fmt.Errorf("mock failure")
	}
	return "  双顶形态，颈线 92。  ", nil
}

func sampleAnalysis() pattern.Analysis {
	return pattern.Analysis{
		Kind:       pattern.KindDoubleTop,
		Confidence: 0.92,
		Direction:  pattern.BiasBearish,
		Metrics:    pattern.Metrics{BreakoutLevel: 92, TargetLevel: 84, StopLoss: 100.5},
	}
}

func TestDescribeUsesFirstHealthyProvider(t *testing.T) {
	broken := &fakeProvider{id: "a", fail: true}
	healthy := &fakeProvider{id: "b"}
	d := NewDescriber([]provider.ModelProvider{broken, healthy}, 0)

	text, err := d.Describe(context.Background(), "BTCUSDT", "4h", sampleAnalysis(), indicator.Snapshot{})
	if err != nil {
		t.Fatalf("第二个模型健康时不应失败: %v", err)
	}
	if text != "双顶形态，颈线 92。" {
		t.Fatalf("返回文本应去除首尾空白, 实际=%q", text)
	}
	if !strings.Contains(healthy.seen.User, "double_top") {
		t.Fatalf("prompt 应包含形态类别, 实际=%q", healthy.seen.User)
	}
	if healthy.seen.System == "" {
		t.Fatalf("system prompt 不应为空")
	}
}

func TestDescribeAllProvidersFail(t *testing.T) {
	d := NewDescriber([]provider.ModelProvider{&fakeProvider{id: "a", fail: true}}, 0)
	if _, err := d.Describe(context.Background(), "BTCUSDT", "4h", sampleAnalysis(), indicator.Snapshot{}); err == nil {
		t.Fatalf("全部模型失败应返回错误")
	}
}

func TestDescriberDisabled(t *testing.T) {
	var d *Describer
	if d.Enabled() {
		t.Fatalf("nil Describer 应视为关闭")
	}
	if NewDescriber(nil, 0).Enabled() {
		t.Fatalf("无模型应视为关闭")
	}
}

func TestPrettyJSON(t *testing.T) {
	if got := PrettyJSON(`{"a":1}`); !strings.Contains(got, "\n") {
		t.Fatalf("合法 JSON 应被缩进, 实际=%q", got)
	}
	if got := PrettyJSON("not json"); got != "not json" {
		t.Fatalf("非 JSON 应原样返回, 实际=%q", got)
	}
	if got := PrettyJSON("  "); got != "" {
		t.Fatalf("空白输入应返回空串, 实际=%q", got)
	}
}
