// Package config loads the bot's INI configuration
package config

import (
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
)

//go:embed template.ini
var Template []byte

// Environment
const (
	EnvPrefix   = "SRB"
	EnvPath     = "SRB_CONFIG"
	DefaultPath = "config.ini"
	DotEnvFile  = ".env"
)

// Section names as written in the file.
const (
	SectionTelegram    = "Telegram Info"
	SectionGeneral     = "General"
	SectionBoundingBox = "Bounding Box Fine Tuning"
	SectionDialog      = "Dialog"
)

// TemplateSeparator splits dialog_notif and dialog_fail into pools.
const TemplateSeparator = "```"

type Telegram struct {
	Token       string
	GroupChatID string
}

type General struct {
	TesseractPath  string
	DebugMode      bool
	CycleTime      time.Duration
	RestHours      []int
	OCREngine      string
	OCRAddr        string
	TessdataPrefix string
	OCRTimeout     time.Duration
	TickInterval   time.Duration
	HTTPAddr       string
	DebugDir       string
	HistorySize    int
}

type BoundingBox struct {
	ScaleFactor    float64
	X1, Y1, X2, Y2 float64
}

type Dialog struct {
	Mapping        map[string]string
	Notif          []string
	Fail           []string
	Shutup         string
	Unshutup       string
	Shh            string
	Unshh          string
	TimerReset     string
	AlreadyMuted   string
	AlreadyUnmuted string
	AlreadyQuiet   string
	NotQuiet       string
}

// Entry is one raw key/value pair.
type Entry struct {
	Key   string
	Value string
}

// Section is a named group of raw entries.
type Section struct {
	Name    string
	Entries []Entry
}

type Config struct {
	Path        string
	Telegram    Telegram
	General     General
	BoundingBox BoundingBox
	Dialog      Dialog

	sections []Section
}

// PublicSections returns every section except Telegram credentials, in file layout order.
func (c *Config) PublicSections() []Section {
	return c.sections
}

// layout lists known keys per section in template order.
var layout = []struct {
	name string
	keys []string
}{
	{SectionTelegram, []string{"token", "group_chat_id"}},
	{SectionGeneral, []string{
		"tesseract_path", "debug_mode", "cycle_time", "rest_hours", "ocr_engine", "ocr_addr",
		"tessdata_prefix", "ocr_timeout", "tick_interval_ms", "http_addr", "debug_dir", "history_size",
	}},
	{SectionBoundingBox, []string{"scale_factor", "x1_tuning", "y1_tuning", "x2_tuning", "y2_tuning"}},
	{SectionDialog, []string{
		"mapping", "dialog_notif", "dialog_fail", "dialog_shutup", "dialog_unshutup", "dialog_shh",
		"dialog_unshh", "dialog_timer_reset", "dialog_already_muted", "dialog_already_unmuted",
		"dialog_already_quiet", "dialog_not_quiet",
	}},
}

var defaults = map[string]any{
	"general.tesseract_path":   "tesseract",
	"general.debug_mode":       "False",
	"general.rest_hours":       "",
	"general.ocr_engine":       "cli",
	"general.ocr_addr":         "localhost:50051",
	"general.ocr_timeout":      "10",
	"general.tick_interval_ms": "250",
	"general.debug_dir":        "debug",
	"general.history_size":     "50",

	"bounding box fine tuning.scale_factor": "1.0",
	"bounding box fine tuning.x1_tuning":    "0",
	"bounding box fine tuning.y1_tuning":    "0",
	"bounding box fine tuning.x2_tuning":    "0",
	"bounding box fine tuning.y2_tuning":    "0",

	"dialog.dialog_shutup":          "Okay, I'll stop sending notifications.",
	"dialog.dialog_unshutup":        "Notifications are back on.",
	"dialog.dialog_shh":             "Quiet for the rest of the day.",
	"dialog.dialog_unshh":           "Never mind, notifications are back on.",
	"dialog.dialog_timer_reset":     "Cycle timer reset.",
	"dialog.dialog_already_muted":   "Already muted.",
	"dialog.dialog_already_unmuted": "Notifications are already on.",
	"dialog.dialog_already_quiet":   "Already quiet for today.",
	"dialog.dialog_not_quiet":       "Not in quiet mode.",
}

// ResolvePath loads an optional .env file and returns the config path from the environment.
func ResolvePath() string {
	_ = godotenv.Load(DotEnvFile)
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the INI file at path. If the file does not exist the embedded
// template is written there and ErrConfigMissing is returned.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); stderrors.Is(err, fs.ErrNotExist) {
		if err := WriteTemplate(path); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrConfigMissing
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", " ", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ConfigInvalid, "read %s", path)
	}

	p := parser{v: v}
	cfg := &Config{
		Path: path,
		Telegram: Telegram{
			Token:       p.required(SectionTelegram, "token"),
			GroupChatID: p.required(SectionTelegram, "group_chat_id"),
		},
		General: General{
			TesseractPath:  p.str(SectionGeneral, "tesseract_path"),
			DebugMode:      strings.EqualFold(p.str(SectionGeneral, "debug_mode"), "true"),
			CycleTime:      p.seconds(SectionGeneral, "cycle_time"),
			RestHours:      p.hours(SectionGeneral, "rest_hours"),
			OCREngine:      p.str(SectionGeneral, "ocr_engine"),
			OCRAddr:        p.str(SectionGeneral, "ocr_addr"),
			TessdataPrefix: p.str(SectionGeneral, "tessdata_prefix"),
			OCRTimeout:     p.seconds(SectionGeneral, "ocr_timeout"),
			TickInterval:   time.Duration(p.positiveInt(SectionGeneral, "tick_interval_ms")) * time.Millisecond,
			HTTPAddr:       p.str(SectionGeneral, "http_addr"),
			DebugDir:       p.str(SectionGeneral, "debug_dir"),
			HistorySize:    p.positiveInt(SectionGeneral, "history_size"),
		},
		BoundingBox: BoundingBox{
			ScaleFactor: p.float(SectionBoundingBox, "scale_factor"),
			X1:          p.float(SectionBoundingBox, "x1_tuning"),
			Y1:          p.float(SectionBoundingBox, "y1_tuning"),
			X2:          p.float(SectionBoundingBox, "x2_tuning"),
			Y2:          p.float(SectionBoundingBox, "y2_tuning"),
		},
		Dialog: Dialog{
			Mapping:        p.mapping(SectionDialog, "mapping"),
			Notif:          p.pool(SectionDialog, "dialog_notif", 1),
			Fail:           p.pool(SectionDialog, "dialog_fail", 0),
			Shutup:         p.str(SectionDialog, "dialog_shutup"),
			Unshutup:       p.str(SectionDialog, "dialog_unshutup"),
			Shh:            p.str(SectionDialog, "dialog_shh"),
			Unshh:          p.str(SectionDialog, "dialog_unshh"),
			TimerReset:     p.str(SectionDialog, "dialog_timer_reset"),
			AlreadyMuted:   p.str(SectionDialog, "dialog_already_muted"),
			AlreadyUnmuted: p.str(SectionDialog, "dialog_already_unmuted"),
			AlreadyQuiet:   p.str(SectionDialog, "dialog_already_quiet"),
			NotQuiet:       p.str(SectionDialog, "dialog_not_quiet"),
		},
	}
	if p.err != nil {
		return nil, p.err
	}
	cfg.sections = publicSections(v)
	return cfg, nil
}

// WriteTemplate writes the embedded template to path, creating parent directories.
func WriteTemplate(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.Wrap(err, apperrors.Internal, "create config directory")
		}
	}
	if err := os.WriteFile(path, Template, 0o600); err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "write config template")
	}
	return nil
}

// publicSections collects raw values of every non-credential section. Known
// keys come first in template order, then any extra keys sorted by name.
func publicSections(v *viper.Viper) []Section {
	var out []Section
	for _, sec := range layout {
		if sec.name == SectionTelegram {
			continue
		}
		prefix := strings.ToLower(sec.name)
		s := Section{Name: sec.name}
		seen := make(map[string]bool, len(sec.keys))
		for _, k := range sec.keys {
			seen[k] = true
			if full := prefix + "." + k; v.IsSet(full) {
				s.Entries = append(s.Entries, Entry{Key: k, Value: v.GetString(full)})
			}
		}
		var extra []string
		for k := range v.GetStringMap(prefix) {
			if !seen[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		for _, k := range extra {
			s.Entries = append(s.Entries, Entry{Key: k, Value: v.GetString(prefix + "." + k)})
		}
		out = append(out, s)
	}
	return out
}

// parser reads typed values, keeping the first error.
type parser struct {
	v   *viper.Viper
	err error
}

func key(section, name string) string {
	return strings.ToLower(section) + "." + name
}

func (p *parser) fail(section, name, format string, args ...any) {
	if p.err == nil {
		p.err = apperrors.Newf(apperrors.ConfigInvalid, format, args...).
			WithMetadata("section", section).
			WithMetadata("key", name)
	}
}

func (p *parser) str(section, name string) string {
	return strings.TrimSpace(p.v.GetString(key(section, name)))
}

func (p *parser) required(section, name string) string {
	s := p.str(section, name)
	if s == "" {
		p.fail(section, name, "[%s] %s is required", section, name)
	}
	return s
}

func (p *parser) positiveInt(section, name string) int {
	s := p.str(section, name)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		p.fail(section, name, "[%s] %s must be a positive integer, got %q", section, name, s)
		return 0
	}
	return n
}

func (p *parser) seconds(section, name string) time.Duration {
	return time.Duration(p.positiveInt(section, name)) * time.Second
}

func (p *parser) float(section, name string) float64 {
	s := p.str(section, name)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(section, name, "[%s] %s must be a number, got %q", section, name, s)
		return 0
	}
	return f
}

// hours parses a comma-separated list of hours of day.
func (p *parser) hours(section, name string) []int {
	var out []int
	for _, part := range strings.Split(p.str(section, name), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		h, err := strconv.Atoi(part)
		if err != nil || h < 0 || h > 23 {
			p.fail(section, name, "[%s] %s: %q is not an hour between 0 and 23", section, name, part)
			return nil
		}
		out = append(out, h)
	}
	return out
}

func (p *parser) mapping(section, name string) map[string]string {
	raw := p.v.GetString(key(section, name))
	m := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		p.fail(section, name, "[%s] %s is not a JSON object of strings: %v", section, name, err)
		return nil
	}
	return m
}

// pool splits a template list and checks each entry has the given number of placeholders.
func (p *parser) pool(section, name string, placeholders int) []string {
	raw := p.v.GetString(key(section, name))
	if strings.TrimSpace(raw) == "" {
		p.fail(section, name, "[%s] %s must list at least one message", section, name)
		return nil
	}
	parts := strings.Split(raw, TemplateSeparator)
	for _, t := range parts {
		if got := strings.Count(t, "{}"); got != placeholders {
			p.fail(section, name, "[%s] %s: %q has %d placeholders, want %d", section, name, t, got, placeholders)
			return nil
		}
	}
	return parts
}
