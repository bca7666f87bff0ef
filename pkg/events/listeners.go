package events

import (
	"github.com/rs/zerolog"

	"github.com/unpakt/unpakt/pkg/logging"
	"github.com/unpakt/unpakt/pkg/types"
)

// BaseListener is a no-op Listener for embedding; implementations
// override only the checkpoints they care about.
type BaseListener struct{}

func (BaseListener) BeforeFile(types.PackFile)        {}
func (BaseListener) AfterFile(types.PackFile)         {}
func (BaseListener) BeforeDir(string, types.PackFile) {}
func (BaseListener) AfterDir(string, types.PackFile)  {}
func (BaseListener) BeforePack(types.Pack, int)       {}
func (BaseListener) AfterPack(types.Pack, int)        {}
func (BaseListener) BeforePacks(int)                  {}
func (BaseListener) AfterPacks()                      {}

// LogListener logs every checkpoint through the component logger. It is
// the default listener the CLI registers.
type LogListener struct {
	logger zerolog.Logger
}

// NewLogListener creates a listener logging under the given component name
func NewLogListener(component string) *LogListener {
	return &LogListener{logger: logging.GetLogger(component)}
}

func (l *LogListener) BeforeFile(f types.PackFile) {
	l.logger.Debug().Str("file", f.TargetPath).Str("pack", f.Pack.Name).Msg("Extracting file")
}

func (l *LogListener) AfterFile(f types.PackFile) {
	l.logger.Debug().Str("file", f.TargetPath).Int64("size", f.Size).Msg("File extracted")
}

func (l *LogListener) BeforeDir(dir string, f types.PackFile) {
	l.logger.Debug().Str("dir", dir).Msg("Creating directory")
}

func (l *LogListener) AfterDir(dir string, f types.PackFile) {
	if dir == "" {
		l.logger.Warn().Msg("Directory creation failed")
		return
	}
	l.logger.Debug().Str("dir", dir).Msg("Directory created")
}

func (l *LogListener) BeforePack(p types.Pack, index int) {
	l.logger.Info().Str("pack", p.Name).Int("index", index).Msg("Installing pack")
}

func (l *LogListener) AfterPack(p types.Pack, index int) {
	l.logger.Info().Str("pack", p.Name).Int("index", index).Msg("Pack installed")
}

func (l *LogListener) BeforePacks(count int) {
	l.logger.Info().Int("packs", count).Msg("Installation starting")
}

func (l *LogListener) AfterPacks() {
	l.logger.Info().Msg("Installation finished")
}
