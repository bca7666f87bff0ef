// Package record persists the installation record: the ordered list of
// installed packs plus a snapshot of the variable bindings at install
// time. The record is read back by a later run and merged — the merge
// is additive by design, never deduplicating, so a pack installed by
// two runs appears twice.
package record

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/logging"
	"github.com/unpakt/unpakt/pkg/types"
)

// Record is the persisted installation information
type Record struct {
	Packs     []types.Pack      `toml:"packs"`
	Variables map[string]string `toml:"variables"`
}

// Writer merges and persists installation records
type Writer struct {
	FS types.FS

	// Path is the record file location under the installation root
	Path string

	// Enabled turns record writing off entirely when false
	Enabled bool
}

// Write merges packs with any previously recorded ones and rewrites the
// record in full, together with the variable snapshot. An absent prior
// record is not an error; a malformed one, or a failed write, is fatal
// for the overall installation.
func (w *Writer) Write(packs []types.Pack, vars map[string]string) error {
	logger := logging.GetLogger("record")

	if !w.Enabled {
		logger.Debug().Msg("Skip writing installation information")
		return nil
	}
	logger.Debug().Str("path", w.Path).Msg("Writing installation information")

	merged := make([]types.Pack, 0, len(packs))
	merged = append(merged, packs...)

	prior, err := w.Read()
	if err != nil {
		return err
	}
	if prior != nil {
		merged = append(merged, prior.Packs...)
	}

	data, err := toml.Marshal(Record{Packs: merged, Variables: vars})
	if err != nil {
		return errors.Wrap(err, errors.ErrRecordWrite, "cannot encode installation record")
	}
	if err := w.FS.WriteFile(w.Path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrRecordWrite, "cannot write installation record %s", w.Path)
	}

	logger.Debug().Int("packs", len(merged)).Msg("Installation information written")
	return nil
}

// Read loads the persisted record. A missing file yields (nil, nil); a
// file that cannot be read or decoded yields a RECORD_READ error.
func (w *Writer) Read() (*Record, error) {
	data, err := w.FS.ReadFile(w.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrRecordRead, "cannot read installation record %s", w.Path)
	}

	var rec Record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRecordRead, "malformed installation record %s", w.Path)
	}
	return &rec, nil
}
