// Wyoming protocol client for a local Piper server.
//
// Piper is a fast, local neural text-to-speech system. The linuxserver/piper
// container exposes the Wyoming protocol on TCP port 10200.
//
// Wyoming protocol format (per event):
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
package synth

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

// defaultVoices maps ISO-639-1 language codes to Piper voice model names.
var defaultVoices = map[string]string{
	"en": "en_US-lessac-medium",
	"fr": "fr_FR-siwis-medium",
	"es": "es_ES-mls_10246-low",
	"de": "de_DE-thorsten-medium",
	"it": "it_IT-riccardo-x_low",
	"pt": "pt_BR-faber-medium",
	"nl": "nl_NL-mls-medium",
	"pl": "pl_PL-darkman-medium",
	"ru": "ru_RU-ruslan-medium",
	"ja": "ja_JP-amitaro-medium",
	"ko": "ko_KR-kss-x_low",
	"zh": "zh_CN-huayan-medium",
}

// WyomingConfig holds the Piper Wyoming server settings.
type WyomingConfig struct {
	// Endpoint is the default host:port of the Wyoming server.
	Endpoint string

	// Endpoints maps a language to a dedicated host:port, for per-language
	// Piper instances.
	Endpoints map[string]string

	// Voices overrides the language → voice name defaults.
	Voices map[string]string
}

// Wyoming implements Synthesizer over the Wyoming protocol. Connections are
// per-request; the zero value is not usable, construct with NewWyoming.
type Wyoming struct {
	endpoint  string
	endpoints map[string]string
	voices    map[string]string
}

// NewWyoming creates a synthesizer from config.
func NewWyoming(cfg WyomingConfig) *Wyoming {
	voices := make(map[string]string, len(defaultVoices))
	for k, v := range defaultVoices {
		voices[k] = v
	}
	for k, v := range cfg.Voices {
		voices[k] = v
	}

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for lang, ep := range cfg.Endpoints {
		endpoints[lang] = stripScheme(ep)
	}

	return &Wyoming{
		endpoint:  stripScheme(cfg.Endpoint),
		endpoints: endpoints,
		voices:    voices,
	}
}

func stripScheme(ep string) string {
	ep = strings.TrimPrefix(ep, "tcp://")
	ep = strings.TrimPrefix(ep, "http://")
	return ep
}

// voiceFor picks the voice: explicit override, then the language default,
// then English.
func (s *Wyoming) voiceFor(opts Opts) string {
	if opts.Voice != "" {
		return opts.Voice
	}
	if v := s.voices[opts.Language]; v != "" {
		return v
	}
	return s.voices["en"]
}

// endpointFor picks the per-language instance when one is configured.
func (s *Wyoming) endpointFor(lang string) string {
	if ep := s.endpoints[lang]; ep != "" {
		return ep
	}
	return s.endpoint
}

// Synthesize sends text to the Wyoming server and returns synthesized audio as WAV.
func (s *Wyoming) Synthesize(ctx context.Context, text string, opts Opts) (*Result, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}
	endpoint := s.endpointFor(opts.Language)
	if endpoint == "" {
		return nil, fmt.Errorf("no synthesis endpoint configured for language %q", opts.Language)
	}
	voice := s.voiceFor(opts)

	slog.Debug("wyoming synthesize", "text_length", len(text), "voice", voice, "language", opts.Language, "endpoint", endpoint)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to wyoming server: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	req := wireEvent{
		Type: "synthesize",
		Data: map[string]any{
			"text":  text,
			"voice": map[string]any{"name": voice},
		},
	}
	if err := sendEvent(conn, req, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	return s.collectAudio(bufio.NewReader(conn))
}

// collectAudio drains the server's event stream:
// audio-start → audio-chunk* → audio-stop.
func (s *Wyoming) collectAudio(r *bufio.Reader) (*Result, error) {
	var (
		pcm        bytes.Buffer
		sampleRate = 22050
		channels   = 1
		width      = 2
	)

	for {
		evt, payload, err := recvEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading wyoming event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if rate, ok := evt.Data["rate"].(float64); ok {
				sampleRate = int(rate)
			}
			if ch, ok := evt.Data["channels"].(float64); ok {
				channels = int(ch)
			}
			if w, ok := evt.Data["width"].(float64); ok {
				width = int(w)
			}

		case "audio-chunk":
			pcm.Write(payload)

		case "audio-stop":
			return &Result{
				Audio:       wrapWAV(pcm.Bytes(), sampleRate, channels, width),
				ContentType: "audio/wav",
				SampleRate:  sampleRate,
				Channels:    channels,
			}, nil

		case "error":
			msg := "unknown error"
			if text, ok := evt.Data["text"].(string); ok {
				msg = text
			}
			return nil, fmt.Errorf("wyoming error: %s", msg)

		default:
			slog.Debug("wyoming unknown event", "type", evt.Type)
		}
	}
}

// Close is a no-op — connections are per-request.
func (s *Wyoming) Close() error { return nil }

type wireEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// sendEvent frames and writes one Wyoming event.
func sendEvent(w io.Writer, evt wireEvent, payload []byte) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	var frame bytes.Buffer
	fmt.Fprintf(&frame, "%d %d\n", len(body), len(payload))
	frame.Write(body)
	frame.WriteByte('\n')
	frame.Write(payload)

	_, err = w.Write(frame.Bytes())
	return err
}

// recvEvent reads one framed Wyoming event.
func recvEvent(r *bufio.Reader) (*wireEvent, []byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	jsonLen, payloadLen, err := parseHeader(strings.TrimSuffix(header, "\n"))
	if err != nil {
		return nil, nil, err
	}

	body := make([]byte, jsonLen+1) // +1 for the trailing \n
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}
	var evt wireEvent
	if err := json.Unmarshal(body[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return &evt, payload, nil
}

// parseHeader splits "<json_length> <payload_length>".
func parseHeader(header string) (jsonLen, payloadLen int, err error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid wyoming header: %q", header)
	}
	if jsonLen, err = strconv.Atoi(strings.TrimSpace(parts[0])); err != nil {
		return 0, 0, fmt.Errorf("parsing json_length: %w", err)
	}
	if payloadLen, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
		return 0, 0, fmt.Errorf("parsing payload_length: %w", err)
	}
	return jsonLen, payloadLen, nil
}

// wrapWAV puts raw PCM in a WAV container.
func wrapWAV(pcm []byte, sampleRate, channels, bytesPerSample int) []byte {
	buf := &bytes.Buffer{}
	buf.Grow(44 + len(pcm))

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
