// Package events defines the lifecycle notifications emitted during
// extraction and the dispatcher that routes them to listeners. Each
// event kind is its own variant type; the dispatcher short-circuits
// per-file and per-directory dispatch when cancellation is pending.
package events

import "github.com/unpakt/unpakt/pkg/types"

// Listener observes extraction lifecycle checkpoints. Implementations
// are invoked in registration order.
type Listener interface {
	BeforeFile(file types.PackFile)
	AfterFile(file types.PackFile)

	// BeforeDir fires before a missing directory is created. AfterDir
	// fires once the attempt finished; dir is empty when creation
	// ultimately failed.
	BeforeDir(dir string, file types.PackFile)
	AfterDir(dir string, file types.PackFile)

	BeforePack(pack types.Pack, index int)
	AfterPack(pack types.Pack, index int)

	BeforePacks(count int)
	AfterPacks()
}

// Event is one extraction lifecycle notification. The concrete variants
// below are the only implementations.
type Event interface {
	isEvent()
}

// BeforeFileEvent fires before a file's bytes are written
type BeforeFileEvent struct{ File types.PackFile }

// AfterFileEvent fires after a file's bytes were written
type AfterFileEvent struct{ File types.PackFile }

// BeforeDirEvent fires before a missing directory is created
type BeforeDirEvent struct {
	Dir  string
	File types.PackFile
}

// AfterDirEvent fires after a directory creation attempt. Dir is empty
// when creation failed.
type AfterDirEvent struct {
	Dir  string
	File types.PackFile
}

// BeforePackEvent fires before a pack's files are extracted
type BeforePackEvent struct {
	Pack  types.Pack
	Index int
}

// AfterPackEvent fires after a pack's files were extracted
type AfterPackEvent struct {
	Pack  types.Pack
	Index int
}

// BeforePacksEvent brackets the start of the whole pack set
type BeforePacksEvent struct{ Count int }

// AfterPacksEvent brackets the end of the whole pack set
type AfterPacksEvent struct{}

func (BeforeFileEvent) isEvent()  {}
func (AfterFileEvent) isEvent()   {}
func (BeforeDirEvent) isEvent()   {}
func (AfterDirEvent) isEvent()    {}
func (BeforePackEvent) isEvent()  {}
func (AfterPackEvent) isEvent()   {}
func (BeforePacksEvent) isEvent() {}
func (AfterPacksEvent) isEvent()  {}
