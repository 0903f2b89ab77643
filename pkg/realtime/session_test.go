package realtime

import (
	"testing"
)

func sessionPayload(t *testing.T, conn *fakeConn) map[string]any {
	t.Helper()
	w := conn.lastWrite()
	if w == nil || w["type"] != EventSessionUpdate {
		t.Fatalf("last write = %v, want a session.update", w)
	}
	session, ok := w["session"].(map[string]any)
	if !ok {
		t.Fatal("session.update carries no session object")
	}
	return session
}

func TestUpdateVoiceSendsFullConfig(t *testing.T) {
	c, d := newTestClient(t)
	conn := mustConnect(t, c, d)

	if !c.UpdateVoice(VoiceNova) {
		t.Fatal("UpdateVoice failed while connected")
	}

	session := sessionPayload(t, conn)
	if got := session["voice"]; got != VoiceNova {
		t.Errorf("voice = %v, want %q", got, VoiceNova)
	}

	// Every field travels with every update, not just the changed one.
	if got := session["temperature"]; got != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", got, DefaultTemperature)
	}
	if got := session["max_response_output_tokens"]; got != float64(DefaultMaxOutputTokens) {
		t.Errorf("max_response_output_tokens = %v, want %d", got, DefaultMaxOutputTokens)
	}
	if got := session["input_audio_format"]; got != AudioFormatPCM16 {
		t.Errorf("input_audio_format = %v, want %q", got, AudioFormatPCM16)
	}
	if got := session["output_audio_format"]; got != AudioFormatPCM16 {
		t.Errorf("output_audio_format = %v, want %q", got, AudioFormatPCM16)
	}
	if _, ok := session["instructions"]; !ok {
		t.Error("instructions omitted from payload")
	}
	modalities, ok := session["modalities"].([]any)
	if !ok || len(modalities) != 2 {
		t.Errorf("modalities = %v, want [text audio]", session["modalities"])
	}
	td, ok := session["turn_detection"].(map[string]any)
	if !ok {
		t.Fatal("turn_detection omitted from payload")
	}
	if got := td["type"]; got != TurnDetectionServerVAD {
		t.Errorf("turn_detection.type = %v, want %q", got, TurnDetectionServerVAD)
	}
	if got := td["threshold"]; got != DefaultVADThreshold {
		t.Errorf("turn_detection.threshold = %v, want %v", got, DefaultVADThreshold)
	}
}

func TestUpdateTurnDetectionPartial(t *testing.T) {
	c, d := newTestClient(t)
	conn := mustConnect(t, c, d)

	threshold := 0.8
	if !c.UpdateTurnDetection(TurnDetectionUpdate{Threshold: &threshold}) {
		t.Fatal("UpdateTurnDetection failed while connected")
	}

	cfg := c.Config()
	if cfg.TurnDetection.Threshold != 0.8 {
		t.Errorf("threshold = %v, want 0.8", cfg.TurnDetection.Threshold)
	}
	if cfg.TurnDetection.Mode != TurnDetectionServerVAD {
		t.Errorf("mode = %q, changed by a threshold-only update", cfg.TurnDetection.Mode)
	}
	if cfg.TurnDetection.PrefixPaddingMs != DefaultPrefixPaddingMs {
		t.Errorf("prefix_padding_ms = %d, want %d", cfg.TurnDetection.PrefixPaddingMs, DefaultPrefixPaddingMs)
	}

	td := sessionPayload(t, conn)["turn_detection"].(map[string]any)
	if got := td["threshold"]; got != 0.8 {
		t.Errorf("wire threshold = %v, want 0.8", got)
	}
	if got := td["type"]; got != TurnDetectionServerVAD {
		t.Errorf("wire type = %v, want %q", got, TurnDetectionServerVAD)
	}

	mode := TurnDetectionNone
	if !c.UpdateTurnDetection(TurnDetectionUpdate{Mode: &mode}) {
		t.Fatal("UpdateTurnDetection failed while connected")
	}
	cfg = c.Config()
	if cfg.TurnDetection.Mode != TurnDetectionNone {
		t.Errorf("mode = %q, want %q", cfg.TurnDetection.Mode, TurnDetectionNone)
	}
	if cfg.TurnDetection.Threshold != 0.8 {
		t.Errorf("threshold = %v, reset by a mode-only update", cfg.TurnDetection.Threshold)
	}
}

func TestUpdatesChangeLocalConfig(t *testing.T) {
	c, d := newTestClient(t)
	mustConnect(t, c, d)

	c.UpdateInstructions("You are a campus assistant.")
	c.UpdateTemperature(0.6)
	c.UpdateMaxOutputTokens(2048)

	cfg := c.Config()
	if cfg.Instructions != "You are a campus assistant." {
		t.Errorf("instructions = %q", cfg.Instructions)
	}
	if cfg.Temperature != 0.6 {
		t.Errorf("temperature = %v, want 0.6", cfg.Temperature)
	}
	if cfg.MaxOutputTokens != 2048 {
		t.Errorf("max output tokens = %d, want 2048", cfg.MaxOutputTokens)
	}
}

func TestConfigSnapshot(t *testing.T) {
	c, _ := newTestClient(t)

	cfg := c.Config()
	cfg.Modalities[0] = "mutated"
	cfg.Voice = "mutated"

	fresh := c.Config()
	if fresh.Modalities[0] != ModalityText {
		t.Errorf("modalities = %v, caller mutation leaked in", fresh.Modalities)
	}
	if fresh.Voice != DefaultVoice {
		t.Errorf("voice = %q, caller mutation leaked in", fresh.Voice)
	}
}

func TestConfigSurvivesDisconnect(t *testing.T) {
	c, d := newTestClient(t)
	mustConnect(t, c, d)
	c.UpdateVoice(VoiceShimmer)
	c.Disconnect()

	if got := c.Config().Voice; got != VoiceShimmer {
		t.Errorf("voice after disconnect = %q, want %q", got, VoiceShimmer)
	}
}
