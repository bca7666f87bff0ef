package unpack

import (
	"path/filepath"

	"github.com/unpakt/unpakt/pkg/errors"
	"github.com/unpakt/unpakt/pkg/events"
	"github.com/unpakt/unpakt/pkg/types"
)

// Source is one pack of the payload: the pack descriptor plus the
// directory holding its files. Archive codecs are external; anything
// that can present a pack as a directory tree can feed a session.
type Source struct {
	Pack types.Pack
	Root string
}

// Extract unpacks every source into the installation root. The session
// registers itself for the duration of the run and polls for
// cancellation before each file; once cancellation is observed no
// further file is written and an INTERRUPTED error is returned.
func (s *Session) Extract(sources []Source) error {
	s.registry.Register(s)
	defer s.registry.Unregister(s)

	s.logger.Info().Int("packs", len(sources)).Str("root", s.root).Msg("Starting extraction")
	s.events.Dispatch(events.BeforePacksEvent{Count: len(sources)})

	for i, src := range sources {
		s.events.Dispatch(events.BeforePackEvent{Pack: src.Pack, Index: i})
		if err := s.extractTree(src.Pack, src.Root, ""); err != nil {
			return err
		}
		s.events.Dispatch(events.AfterPackEvent{Pack: src.Pack, Index: i})
	}

	s.events.Dispatch(events.AfterPacksEvent{})
	s.logger.Info().Int("files", len(s.installed)).Msg("Extraction complete")
	return nil
}

func (s *Session) extractTree(pack types.Pack, payloadRoot, rel string) error {
	dir := filepath.Join(payloadRoot, rel)
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		s.MarkFailed()
		return errors.Wrapf(err, errors.ErrExtractFailed, "cannot list payload directory %s", dir)
	}

	for _, entry := range entries {
		childRel := filepath.Join(rel, entry.Name())

		if entry.IsDir() {
			if err := s.extractTree(pack, payloadRoot, childRel); err != nil {
				return err
			}
			continue
		}

		// Poll point: between discrete units of work, before any I/O
		// for the next file starts.
		if s.registry.PollSelf(s) {
			s.logger.Warn().Str("file", childRel).Msg("Extraction interrupted")
			return errors.Newf(errors.ErrInterrupted, "extraction of %s interrupted", pack.Name)
		}

		pf := types.PackFile{
			TargetPath:   filepath.Join(s.root, childRel),
			RelativePath: childRel,
			Pack:         pack,
		}

		if err := s.mat.MakeDirs(pf.Dir(), pf); err != nil {
			s.MarkFailed()
			return err
		}

		s.events.Dispatch(events.BeforeFileEvent{File: pf})

		data, err := s.fs.ReadFile(filepath.Join(payloadRoot, childRel))
		if err != nil {
			s.MarkFailed()
			return errors.Wrapf(err, errors.ErrExtractFailed, "cannot read payload file %s", childRel)
		}
		pf.Size = int64(len(data))

		if err := s.fs.WriteFile(pf.TargetPath, data, 0644); err != nil {
			s.MarkFailed()
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", pf.TargetPath)
		}
		s.addInstalled(pf.TargetPath)

		s.events.Dispatch(events.AfterFileEvent{File: pf})
	}

	return nil
}
