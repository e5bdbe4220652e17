package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LaneConfig binds one chart channel to a playable lane.
type LaneConfig struct {
	Channel uint32 `yaml:"channel"` // BMS channel, e.g. 11 for 1P key 1
	Key     string `yaml:"key"`     // key name, e.g. "S" or "SPACE"
}

// Config holds the game and tooling settings.
type Config struct {
	Chart string `yaml:"chart"` // chart file opened when -chart is not given

	Window struct {
		Width  int32 `yaml:"width"`
		Height int32 `yaml:"height"`
		FPS    int32 `yaml:"fps"`
	} `yaml:"window"`

	NoteSpeed float64 `yaml:"note_speed"` // pixels per second
	LeadIn    float64 `yaml:"lead_in"`    // seconds before bar 0 reaches the hit line
	Volume    float64 `yaml:"volume"`     // 0.0 - 1.0

	Lanes []LaneConfig `yaml:"lanes"`

	Printer struct {
		FirstChannel uint32 `yaml:"first_channel"`
		Channels     uint32 `yaml:"channels"`
	} `yaml:"printer"`

	MIDI struct {
		Channel    uint8  `yaml:"channel"`
		Resolution uint16 `yaml:"resolution"`
	} `yaml:"midi"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// defaultLanes is the 1P 7-key layout with the scratch lane first.
var defaultLanes = []LaneConfig{
	{Channel: 16, Key: "LEFT_SHIFT"},
	{Channel: 11, Key: "S"},
	{Channel: 12, Key: "D"},
	{Channel: 13, Key: "F"},
	{Channel: 14, Key: "SPACE"},
	{Channel: 15, Key: "J"},
	{Channel: 18, Key: "K"},
	{Channel: 19, Key: "L"},
}

// LoadConfig reads the YAML config at path. A missing file is not an error:
// the defaults are returned together with os.ErrNotExist so the caller can
// warn about it.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		cfg.applyDefaults()
		if os.IsNotExist(err) {
			return cfg, errors.Wrapf(os.ErrNotExist, "config %s", path)
		}
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Chart == "" {
		cfg.Chart = "assets/test.bms"
	}
	if cfg.Window.Width <= 0 {
		cfg.Window.Width = SCREEN_WIDTH
	}
	if cfg.Window.Height <= 0 {
		cfg.Window.Height = SCREEN_HEIGHT
	}
	if cfg.Window.FPS <= 0 {
		cfg.Window.FPS = 60
	}
	if cfg.NoteSpeed <= 0 {
		cfg.NoteSpeed = NOTE_SPEED
	}
	if cfg.LeadIn <= 0 {
		cfg.LeadIn = COUNTDOWN_TIME
	}
	if cfg.Volume <= 0 || cfg.Volume > 1 {
		cfg.Volume = 1
	}
	if len(cfg.Lanes) == 0 {
		cfg.Lanes = append([]LaneConfig(nil), defaultLanes...)
	}
	if cfg.Printer.Channels == 0 {
		cfg.Printer.FirstChannel = 11
		cfg.Printer.Channels = 9
	}
	if cfg.MIDI.Resolution == 0 {
		cfg.MIDI.Resolution = 480
	}
	if cfg.MIDI.Channel == 0 {
		cfg.MIDI.Channel = 9
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8088"
	}
}
