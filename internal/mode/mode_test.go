package mode

import (
	"errors"
	"testing"
	"time"
)

type stubVoice struct{ active bool }

func (s *stubVoice) Active() bool { return s.active }

func TestPolicies(t *testing.T) {
	cases := []struct {
		mode      Mode
		threshold time.Duration
		auto      bool
		voice     bool
	}{
		{Standard, 1500 * time.Millisecond, false, false},
		{Simultaneous, 300 * time.Millisecond, false, false},
		{Universal, 500 * time.Millisecond, true, false},
		{VoicePreserving, time.Second, false, true},
	}
	for _, c := range cases {
		p, ok := PolicyFor(c.mode)
		if !ok {
			t.Fatalf("PolicyFor(%s): missing policy", c.mode)
		}
		if p.SilenceThreshold != c.threshold {
			t.Errorf("%s silence threshold: got %v, want %v", c.mode, p.SilenceThreshold, c.threshold)
		}
		if p.AutoDetect != c.auto {
			t.Errorf("%s auto detect: got %v, want %v", c.mode, p.AutoDetect, c.auto)
		}
		if p.RequiresVoiceModel != c.voice {
			t.Errorf("%s requires voice model: got %v, want %v", c.mode, p.RequiresVoiceModel, c.voice)
		}
	}
}

func TestParseMode(t *testing.T) {
	if _, err := ParseMode("simultaneous"); err != nil {
		t.Fatalf("ParseMode(simultaneous): %v", err)
	}
	if _, err := ParseMode("turbo"); err == nil {
		t.Fatalf("ParseMode(turbo): expected error")
	}
}

func TestVoicePreservingWithoutModel(t *testing.T) {
	m, err := NewManager(Standard, &stubVoice{active: false})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	err = m.Set(VoicePreserving)
	if !errors.Is(err, ErrModeUnavailable) {
		t.Fatalf("Set(VoicePreserving): got %v, want ErrModeUnavailable", err)
	}
	if got := m.Current(); got != Standard {
		t.Fatalf("mode after failed switch: got %s, want %s", got, Standard)
	}
}

func TestVoicePreservingWithModel(t *testing.T) {
	voice := &stubVoice{active: true}
	m, err := NewManager(Standard, voice)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Set(VoicePreserving); err != nil {
		t.Fatalf("Set(VoicePreserving): %v", err)
	}
	if got := m.Current(); got != VoicePreserving {
		t.Fatalf("mode: got %s, want %s", got, VoicePreserving)
	}
	if got := m.Policy().SilenceThreshold; got != time.Second {
		t.Fatalf("silence threshold: got %v, want 1s", got)
	}
}

func TestNilVoiceSource(t *testing.T) {
	m, err := NewManager(Standard, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Set(VoicePreserving); !errors.Is(err, ErrModeUnavailable) {
		t.Fatalf("Set(VoicePreserving) with nil source: got %v, want ErrModeUnavailable", err)
	}
}

func TestMetrics(t *testing.T) {
	m, err := NewManager(Simultaneous, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m.RecordTranslation(100 * time.Millisecond)
	m.RecordTranslation(300 * time.Millisecond)

	got := m.Metrics()
	if got.Mode != Simultaneous {
		t.Errorf("metrics mode: got %s, want %s", got.Mode, Simultaneous)
	}
	if got.Translations != 2 {
		t.Errorf("translations: got %d, want 2", got.Translations)
	}
	if got.AvgLatencyMS != 200 {
		t.Errorf("avg latency: got %v, want 200", got.AvgLatencyMS)
	}
	if got.LastAt.IsZero() {
		t.Errorf("last at: expected non-zero time")
	}
}
