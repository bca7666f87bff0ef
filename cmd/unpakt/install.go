package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/unpakt/unpakt/pkg/config"
	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/events"
	"github.com/unpakt/unpakt/pkg/filesystem"
	"github.com/unpakt/unpakt/pkg/interrupt"
	"github.com/unpakt/unpakt/pkg/logging"
	"github.com/unpakt/unpakt/pkg/paths"
	"github.com/unpakt/unpakt/pkg/reconcile"
	"github.com/unpakt/unpakt/pkg/record"
	"github.com/unpakt/unpakt/pkg/types"
	"github.com/unpakt/unpakt/pkg/unpack"
	"github.com/unpakt/unpakt/pkg/variables"
)

var (
	payloadDir string
	targetDir  string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Extract a payload into the installation root and reconcile it",
	Long: `Extract every pack found in the payload directory (one subdirectory
per pack) into the installation root, then delete stale files from a
previous installation per the configured update checks, and write the
installation record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstall()
	},
}

func init() {
	installCmd.Flags().StringVar(&payloadDir, "payload", "", "Payload directory, one subdirectory per pack (required)")
	installCmd.Flags().StringVar(&targetDir, "target", "", "Installation root (defaults to install_root from config)")
	_ = installCmd.MarkFlagRequired("payload")
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = paths.ConfigFile()
	}
	return config.Load(path)
}

func runInstall() error {
	logger := logging.GetLogger("cli")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	root := targetDir
	if root == "" {
		root = cfg.InstallRoot
	}
	if root == "" {
		return errors.New(errors.ErrInvalidInput, "no installation root: pass --target or set install_root")
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "cannot resolve installation root")
	}

	fs := filesystem.NewOS()
	registry := interrupt.Default()
	vars := variables.New()
	for name, value := range cfg.Variables {
		vars.Set(name, value)
	}
	vars.Set("INSTALL_PATH", root)

	sources, err := payloadSources(fs, payloadDir)
	if err != nil {
		return err
	}

	handler := &cliHandler{registry: registry}

	session := unpack.NewSession(unpack.Options{
		FS:          fs,
		Registry:    registry,
		Handler:     handler,
		Listeners:   []events.Listener{events.NewLogListener("install")},
		InstallRoot: root,
	})

	// Ctrl-C cancels every running session as a group.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			registry.InterruptAll(cfg.InterruptTimeout())
		}
	}()

	if err := session.Extract(sources); err != nil {
		return err
	}

	reconciler := reconcile.New(reconcile.Options{
		FS:           fs,
		Handler:      handler,
		Root:         root,
		Substitute:   vars.Substitute,
		DetectCycles: cfg.DetectCycles,
	})
	if err := reconciler.Run(cfg.UpdateChecks, session.InstalledFiles()); err != nil {
		// Partial reconciliation: deletions computed before the
		// failure were applied, the installation itself stands.
		logger.Warn().Err(err).Msg("Update checks aborted")
	}

	packs := make([]types.Pack, 0, len(sources))
	for _, src := range sources {
		packs = append(packs, src.Pack)
	}
	writer := &record.Writer{FS: fs, Path: paths.RecordFile(root), Enabled: cfg.WriteRecord}
	if err := writer.Write(packs, vars.Snapshot()); err != nil {
		return err
	}

	fmt.Printf("Installed %d pack(s), %d file(s) to %s\n",
		len(packs), len(session.InstalledFiles()), root)
	return nil
}

// payloadSources maps each subdirectory of the payload directory to one
// pack source.
func payloadSources(fs types.FS, dir string) ([]unpack.Source, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "cannot list payload directory %s", dir)
	}

	var sources []unpack.Source
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sources = append(sources, unpack.Source{
			Pack: types.Pack{Name: entry.Name()},
			Root: filepath.Join(dir, entry.Name()),
		})
	}
	if len(sources) == 0 {
		return nil, errors.Newf(errors.ErrInvalidInput, "payload directory %s contains no packs", dir)
	}
	return sources, nil
}

// cliHandler is the progress-reporting surface of the CLI: errors and
// notifications go to the log, a stop request broadcasts cancellation
// to every running session.
type cliHandler struct {
	registry *interrupt.Registry
}

func (h *cliHandler) EmitError(title, message string) {
	logger := logging.GetLogger("cli")
	logger.Error().Str("title", title).Msg(message)
}

func (h *cliHandler) EmitNotification(message string) {
	logger := logging.GetLogger("cli")
	logger.Info().Msg(message)
}

func (h *cliHandler) StopAction() {
	h.registry.BroadcastInterrupt()
}
