package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
)

const validINI = `[Telegram Info]
token = 123:abc
group_chat_id = -1001234

[General]
tesseract_path = /usr/bin/tesseract
debug_mode = True
cycle_time = 5
rest_hours = 1, 2,23

[Bounding Box Fine Tuning]
scale_factor = 1.25
x1_tuning = 0.1
y1_tuning = 0.2
x2_tuning = 0.3
y2_tuning = 0.4

[Dialog]
mapping = {"ABC": "Dragon Quest", "XYZ": "Zelda"}
dialog_notif = It's {}!` + "```" + `Playing {} again
dialog_fail = No idea.` + "```" + `Can't tell.
dialog_shutup = Fine.
dialog_unshutup = Back.
dialog_shh = Shh.
dialog_unshh = Unshh.
dialog_timer_reset = Reset.
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validINI))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.GroupChatID != "-1001234" {
		t.Errorf("Telegram = %+v", cfg.Telegram)
	}
	if cfg.General.TesseractPath != "/usr/bin/tesseract" {
		t.Errorf("TesseractPath = %q", cfg.General.TesseractPath)
	}
	if !cfg.General.DebugMode {
		t.Error("DebugMode should be true")
	}
	if cfg.General.CycleTime != 5*time.Second {
		t.Errorf("CycleTime = %v, want 5s", cfg.General.CycleTime)
	}
	if want := []int{1, 2, 23}; !slices.Equal(cfg.General.RestHours, want) {
		t.Errorf("RestHours = %v, want %v", cfg.General.RestHours, want)
	}
	if cfg.BoundingBox != (BoundingBox{ScaleFactor: 1.25, X1: 0.1, Y1: 0.2, X2: 0.3, Y2: 0.4}) {
		t.Errorf("BoundingBox = %+v", cfg.BoundingBox)
	}
	if cfg.Dialog.Mapping["ABC"] != "Dragon Quest" || len(cfg.Dialog.Mapping) != 2 {
		t.Errorf("Mapping = %v", cfg.Dialog.Mapping)
	}
	if want := []string{"It's {}!", "Playing {} again"}; !slices.Equal(cfg.Dialog.Notif, want) {
		t.Errorf("Notif = %q, want %q", cfg.Dialog.Notif, want)
	}
	if want := []string{"No idea.", "Can't tell."}; !slices.Equal(cfg.Dialog.Fail, want) {
		t.Errorf("Fail = %q, want %q", cfg.Dialog.Fail, want)
	}
	if cfg.Dialog.TimerReset != "Reset." {
		t.Errorf("TimerReset = %q", cfg.Dialog.TimerReset)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validINI))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	g := cfg.General
	if g.OCREngine != "cli" {
		t.Errorf("OCREngine = %q, want cli", g.OCREngine)
	}
	if g.OCRAddr != "localhost:50051" {
		t.Errorf("OCRAddr = %q", g.OCRAddr)
	}
	if g.OCRTimeout != 10*time.Second {
		t.Errorf("OCRTimeout = %v, want 10s", g.OCRTimeout)
	}
	if g.TickInterval != 250*time.Millisecond {
		t.Errorf("TickInterval = %v, want 250ms", g.TickInterval)
	}
	if g.HTTPAddr != "" {
		t.Errorf("HTTPAddr = %q, want disabled", g.HTTPAddr)
	}
	if g.DebugDir != "debug" || g.HistorySize != 50 {
		t.Errorf("DebugDir = %q, HistorySize = %d", g.DebugDir, g.HistorySize)
	}
	if cfg.Dialog.AlreadyMuted == "" || cfg.Dialog.NotQuiet == "" {
		t.Error("already-state replies should have defaults")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SRB_TELEGRAM_INFO_TOKEN", "from-env")
	t.Setenv("SRB_GENERAL_CYCLE_TIME", "60")

	cfg, err := Load(writeConfig(t, validINI))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Errorf("Token = %q, want from-env", cfg.Telegram.Token)
	}
	if cfg.General.CycleTime != time.Minute {
		t.Errorf("CycleTime = %v, want 1m", cfg.General.CycleTime)
	}
}

func TestLoadMissingWritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.ini")

	_, err := Load(path)
	if !errors.Is(err, apperrors.ErrConfigMissing) {
		t.Fatalf("Load() error = %v, want ErrConfigMissing", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if !bytes.Equal(got, Template) {
		t.Error("written file should match the embedded template")
	}

	// The template is valid apart from the empty credentials.
	_, err = Load(path)
	if !apperrors.IsCode(err, apperrors.ConfigInvalid) || !strings.Contains(err.Error(), "token") {
		t.Errorf("Load(template) error = %v, want CONFIG_INVALID naming token", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		old     string
		new     string
		wantKey string
	}{
		{"missing token", "token = 123:abc", "token =", "token"},
		{"bad cycle time", "cycle_time = 5", "cycle_time = soon", "cycle_time"},
		{"zero cycle time", "cycle_time = 5", "cycle_time = 0", "cycle_time"},
		{"rest hour out of range", "rest_hours = 1, 2,23", "rest_hours = 1,24", "rest_hours"},
		{"rest hour not a number", "rest_hours = 1, 2,23", "rest_hours = noon", "rest_hours"},
		{"bad scale", "scale_factor = 1.25", "scale_factor = big", "scale_factor"},
		{"bad mapping", `mapping = {"ABC": "Dragon Quest", "XYZ": "Zelda"}`, "mapping = [1,2]", "mapping"},
		{"notif without placeholder", "dialog_notif = It's {}!", "dialog_notif = It's on!", "dialog_notif"},
		{"notif with two placeholders", "dialog_notif = It's {}!", "dialog_notif = It's {} and {}!", "dialog_notif"},
		{"empty fail pool", "dialog_fail = No idea.```Can't tell.", "dialog_fail =", "dialog_fail"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validINI, tt.old, tt.new, 1)
			if content == validINI {
				t.Fatalf("fixture does not contain %q", tt.old)
			}
			_, err := Load(writeConfig(t, content))
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) || appErr.Code != apperrors.ConfigInvalid {
				t.Fatalf("Load() error = %v, want CONFIG_INVALID", err)
			}
			if appErr.Metadata["key"] != tt.wantKey {
				t.Errorf("key = %q, want %q", appErr.Metadata["key"], tt.wantKey)
			}
		})
	}
}

func TestPublicSections(t *testing.T) {
	cfg, err := Load(writeConfig(t, validINI+"extra_key = 1\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	sections := cfg.PublicSections()
	var names []string
	for _, s := range sections {
		names = append(names, s.Name)
	}
	if want := []string{SectionGeneral, SectionBoundingBox, SectionDialog}; !slices.Equal(names, want) {
		t.Fatalf("sections = %v, want %v", names, want)
	}
	for _, s := range sections {
		for _, e := range s.Entries {
			if e.Key == "token" || e.Key == "group_chat_id" || strings.Contains(e.Value, "123:abc") {
				t.Errorf("credential leaked in [%s]: %s", s.Name, e.Key)
			}
		}
	}

	general := sections[0].Entries
	if general[0] != (Entry{Key: "tesseract_path", Value: "/usr/bin/tesseract"}) {
		t.Errorf("first [General] entry = %+v", general[0])
	}
	dialog := sections[2].Entries
	if last := dialog[len(dialog)-1]; last.Key != "extra_key" || last.Value != "1" {
		t.Errorf("unknown keys should follow known ones, got %+v", last)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvPath, "")
	if got := ResolvePath(); got != DefaultPath {
		t.Errorf("ResolvePath() = %q, want %q", got, DefaultPath)
	}
	t.Setenv(EnvPath, "/etc/srb/config.ini")
	if got := ResolvePath(); got != "/etc/srb/config.ini" {
		t.Errorf("ResolvePath() = %q, want env value", got)
	}
}
