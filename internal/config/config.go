// Package config reads settings from the environment, after loading .env.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Client struct {
	ServiceURL       string
	Token            string
	DBPath           string
	LogPath          string
	RecognizerSocket string
	Locale           string
	RecordCommand    []string
	PlayerCommand    []string
	TargetLanguage   string
}

type Server struct {
	Port              string
	OpenAIKey         string
	STTProvider       string
	DeepgramKey       string
	TTSProvider       string
	ElevenLabsKey     string
	ElevenLabsVoiceID string
	DatabaseURL       string
	S3                S3
	RateLimit         int
	APIToken          string
}

type S3 struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func (s S3) Enabled() bool { return s.Endpoint != "" }

// LoadClient reads client settings. A missing .env is not an error.
func LoadClient() Client {
	_ = godotenv.Load()

	return Client{
		ServiceURL:       getenv("TWINTALK_URL", "http://localhost:8080"),
		Token:            os.Getenv("TWINTALK_TOKEN"),
		DBPath:           os.Getenv("TWINTALK_DB"),
		LogPath:          getenv("TWINTALK_LOG", "twin_talk.log"),
		RecognizerSocket: os.Getenv("TWINTALK_RECOGNIZER_SOCKET"),
		Locale:           getenv("TWINTALK_LOCALE", "ja-JP"),
		RecordCommand:    strings.Fields(os.Getenv("TWINTALK_RECORD_CMD")),
		PlayerCommand:    strings.Fields(os.Getenv("TWINTALK_PLAYER_CMD")),
		TargetLanguage:   getenv("TWINTALK_TARGET_LANG", "en"),
	}
}

// LoadServer reads service settings. OPENAI_API_KEY is required.
func LoadServer() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Port:              getenv("PORT", "8080"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		STTProvider:       getenv("STT_PROVIDER", "openai"),
		DeepgramKey:       os.Getenv("DEEPGRAM_API_KEY"),
		TTSProvider:       getenv("TTS_PROVIDER", "openai"),
		ElevenLabsKey:     os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		APIToken:          os.Getenv("API_TOKEN"),
		S3: S3{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    getenv("S3_BUCKET", "twin-talk"),
			Region:    os.Getenv("S3_REGION"),
			UseSSL:    os.Getenv("S3_USE_SSL") != "false",
		},
	}

	if cfg.OpenAIKey == "" {
		return Server{}, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	switch cfg.STTProvider {
	case "openai":
	case "deepgram":
		if cfg.DeepgramKey == "" {
			return Server{}, fmt.Errorf("STT_PROVIDER=deepgram needs DEEPGRAM_API_KEY")
		}
	default:
		return Server{}, fmt.Errorf("unknown STT_PROVIDER %q", cfg.STTProvider)
	}

	switch cfg.TTSProvider {
	case "openai":
	case "elevenlabs":
		if cfg.ElevenLabsKey == "" || cfg.ElevenLabsVoiceID == "" {
			return Server{}, fmt.Errorf("TTS_PROVIDER=elevenlabs needs ELEVENLABS_API_KEY and ELEVENLABS_VOICE_ID")
		}
	default:
		return Server{}, fmt.Errorf("unknown TTS_PROVIDER %q", cfg.TTSProvider)
	}

	rate, err := strconv.Atoi(getenv("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil || rate < 0 {
		return Server{}, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %q", os.Getenv("RATE_LIMIT_PER_MINUTE"))
	}
	cfg.RateLimit = rate

	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
