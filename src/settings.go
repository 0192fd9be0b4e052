package fskrx

/*------------------------------------------------------------------
 *
 * Purpose:	Settings that persist between runs.
 *
 * Description:	A small YAML file.  Command line options override
 *		whatever is loaded from it, and the result can be saved
 *		back for next time.
 *
 *			channel_index: 37
 *			sort_index: 1
 *			filter: "0201"
 *			log: true
 *			name: true
 *			auto_channel: false
 *			log_dir: logs
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultSettingsFile = "fskrx.yaml"

type Settings struct {
	ChannelIndex int    `yaml:"channel_index"`
	SortIndex    int    `yaml:"sort_index"`
	Filter       string `yaml:"filter"`
	Log          bool   `yaml:"log"`
	Name         bool   `yaml:"name"`
	AutoChannel  bool   `yaml:"auto_channel"`
	LogDir       string `yaml:"log_dir"`
	Taps         string `yaml:"taps,omitempty"`
	SyncHits     bool   `yaml:"sync_hits,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{ //nolint:exhaustruct
		ChannelIndex: 0,
		SortIndex:    int(SortHits),
		Name:         true,
		LogDir:       "logs",
		Taps:         TapsBLE1M.String(),
	}
}

// ReadSettings decodes YAML on top of the defaults.
func ReadSettings(r io.Reader) (Settings, error) {
	var s = DefaultSettings()

	var dec = yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return DefaultSettings(), fmt.Errorf("settings: %w", err)
	}

	return s, s.Validate()
}

// LoadSettings reads the file.  A missing file is not an error, the
// defaults are returned.
func LoadSettings(path string) (Settings, error) {
	var f, err = os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}

	if err != nil {
		return DefaultSettings(), fmt.Errorf("settings: %w", err)
	}
	defer f.Close()

	return ReadSettings(f)
}

func (s Settings) Validate() error {
	if s.SortIndex < int(SortHits) || s.SortIndex > int(SortName) {
		return fmt.Errorf("settings: sort_index %d out of range", s.SortIndex)
	}

	if s.Taps != "" {
		if _, err := ParseTapTable(s.Taps); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}

	return nil
}

func (s Settings) WriteTo(w io.Writer) (int64, error) {
	var b, err = yaml.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("settings: %w", err)
	}

	var n, werr = w.Write(b)

	return int64(n), werr //nolint:wrapcheck
}

func (s Settings) Save(path string) error {
	var f, err = os.Create(path)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return err
	}

	return f.Close() //nolint:wrapcheck
}

// ChannelConfig builds the processor configuration these settings ask for.
func (s Settings) ChannelConfig() ChannelConfig {
	var taps, _ = ParseTapTable(s.Taps)

	return ChannelConfig{ //nolint:exhaustruct
		Channel:        s.ChannelIndex,
		Taps:           taps,
		ReportSyncHits: s.SyncHits,
	}
}
