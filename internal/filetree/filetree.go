// Package filetree describes directory layouts declaratively. A Node is built
// once from primitives (files, optional files, many files, directories) and
// yields both a reader (directory → value) and a writer (value → directory).
package filetree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
)

// DefaultConcurrency bounds concurrent file reads inside one ManyFiles node.
const DefaultConcurrency = 8

// Node reads a value of type T from a directory and writes it back.
type Node[T any] interface {
	Read(r *Reader, dir string) (T, error)
	Write(w *Writer, dir string, v T) error
}

// Reader carries the filesystem a Node reads from.
type Reader struct {
	fs          afero.Fs
	concurrency int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithConcurrency sets the number of files a ManyFiles node reads at once.
func WithConcurrency(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewReader returns a Reader over fs.
func NewReader(fs afero.Fs, opts ...ReaderOption) *Reader {
	r := &Reader{fs: fs, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Writer carries the filesystem a Node writes to.
type Writer struct {
	fs afero.Fs
}

// NewWriter returns a Writer over fs.
func NewWriter(fs afero.Fs) *Writer {
	return &Writer{fs: fs}
}

// Read applies n to root on fs.
func Read[T any](fs afero.Fs, root string, n Node[T], opts ...ReaderOption) (T, error) {
	r := NewReader(fs, opts...)
	if ok, err := afero.DirExists(fs, root); err != nil || !ok {
		var zero T
		return zero, &StructureError{Path: root, Kind: KindDirectory}
	}
	return n.Read(r, root)
}

// Write writes v to root on fs using n, creating root if needed.
func Write[T any](fs afero.Fs, root string, n Node[T], v T) error {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return err
	}
	return n.Write(NewWriter(fs), root, v)
}

// Leaf is the raw content of one file.
type Leaf struct {
	// Name is the file name without its extension.
	Name string
	// Path is the file path as read, for error context.
	Path string
	Data []byte
}

// Named pairs a value with the directory it was read from.
type Named[T any] struct {
	Name  string
	Value T
}

// File is a single required file. The first of exts that exists is read;
// writes use exts[0].
func File(name string, exts ...string) Node[Leaf] {
	return fileNode{name: name, exts: exts}
}

type fileNode struct {
	name string
	exts []string
}

func (n fileNode) Read(r *Reader, dir string) (Leaf, error) {
	leaf, found, err := readNamed(r.fs, dir, n.name, n.exts)
	if err != nil {
		return Leaf{}, err
	}
	if !found {
		return Leaf{}, &StructureError{Path: filepath.Join(dir, n.name+"."+n.exts[0]), Kind: KindFile}
	}
	return leaf, nil
}

func (n fileNode) Write(w *Writer, dir string, v Leaf) error {
	return afero.WriteFile(w.fs, filepath.Join(dir, n.name+"."+n.exts[0]), v.Data, 0o644)
}

// OptionalFile is a file that may be absent; absence reads as nil.
func OptionalFile(name string, exts ...string) Node[*Leaf] {
	return optionalFileNode{name: name, exts: exts}
}

type optionalFileNode struct {
	name string
	exts []string
}

func (n optionalFileNode) Read(r *Reader, dir string) (*Leaf, error) {
	leaf, found, err := readNamed(r.fs, dir, n.name, n.exts)
	if err != nil || !found {
		return nil, err
	}
	return &leaf, nil
}

func (n optionalFileNode) Write(w *Writer, dir string, v *Leaf) error {
	if v == nil {
		return nil
	}
	return fileNode(n).Write(w, dir, *v)
}

func readNamed(fs afero.Fs, dir, name string, exts []string) (Leaf, bool, error) {
	for _, ext := range exts {
		path := filepath.Join(dir, name+"."+ext)
		data, err := afero.ReadFile(fs, path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return Leaf{}, false, err
		}
		return Leaf{Name: name, Path: path, Data: data}, true, nil
	}
	return Leaf{}, false, nil
}

// ManyFiles reads every regular file in the directory whose extension is one
// of exts. Files are read concurrently and returned sorted by name, since
// directory listing order is not stable across platforms. Hidden files are
// ignored.
func ManyFiles(exts ...string) Node[[]Leaf] {
	return manyFilesNode{exts: exts}
}

type manyFilesNode struct {
	exts []string
}

func (n manyFilesNode) Read(r *Reader, dir string) ([]Leaf, error) {
	infos, err := afero.ReadDir(r.fs, dir)
	if os.IsNotExist(err) {
		return nil, &StructureError{Path: dir, Kind: KindDirectory}
	}
	if err != nil {
		return nil, err
	}

	p := pool.NewWithResults[Leaf]().WithErrors().WithMaxGoroutines(r.concurrency)
	for _, info := range infos {
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") || !hasExt(info.Name(), n.exts) {
			continue
		}
		path := filepath.Join(dir, info.Name())
		p.Go(func() (Leaf, error) {
			data, err := afero.ReadFile(r.fs, path)
			if err != nil {
				return Leaf{}, err
			}
			return Leaf{Name: trimExt(info.Name()), Path: path, Data: data}, nil
		})
	}
	leaves, err := p.Wait()
	if err != nil {
		return nil, err
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Name < leaves[j].Name })
	return leaves, nil
}

func (n manyFilesNode) Write(w *Writer, dir string, v []Leaf) error {
	for _, leaf := range v {
		path := filepath.Join(dir, leaf.Name+"."+n.exts[0])
		if err := afero.WriteFile(w.fs, path, leaf.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func hasExt(name string, exts []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func trimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Dir descends into a required subdirectory.
func Dir[T any](name string, body Node[T]) Node[T] {
	return dirNode[T]{name: name, body: body}
}

type dirNode[T any] struct {
	name string
	body Node[T]
}

func (n dirNode[T]) Read(r *Reader, dir string) (T, error) {
	path := filepath.Join(dir, n.name)
	if ok, err := afero.DirExists(r.fs, path); err != nil || !ok {
		var zero T
		if err != nil {
			return zero, err
		}
		return zero, &StructureError{Path: path, Kind: KindDirectory}
	}
	return n.body.Read(r, path)
}

func (n dirNode[T]) Write(w *Writer, dir string, v T) error {
	path := filepath.Join(dir, n.name)
	if err := w.fs.MkdirAll(path, 0o755); err != nil {
		return err
	}
	return n.body.Write(w, path, v)
}

// OptionalDir descends into a subdirectory if it exists; a missing directory
// reads as the zero value of T. On write the directory is removed again if
// the body wrote nothing into it.
func OptionalDir[T any](name string, body Node[T]) Node[T] {
	return optionalDirNode[T]{name: name, body: body}
}

type optionalDirNode[T any] struct {
	name string
	body Node[T]
}

func (n optionalDirNode[T]) Read(r *Reader, dir string) (T, error) {
	path := filepath.Join(dir, n.name)
	ok, err := afero.DirExists(r.fs, path)
	if err != nil || !ok {
		var zero T
		return zero, err
	}
	return n.body.Read(r, path)
}

func (n optionalDirNode[T]) Write(w *Writer, dir string, v T) error {
	path := filepath.Join(dir, n.name)
	if err := w.fs.MkdirAll(path, 0o755); err != nil {
		return err
	}
	if err := n.body.Write(w, path, v); err != nil {
		return err
	}
	if empty, err := afero.IsEmpty(w.fs, path); err == nil && empty {
		return w.fs.Remove(path)
	}
	return nil
}

// ManyDirs applies body to every non-hidden subdirectory, in name order.
func ManyDirs[T any](body Node[T]) Node[[]Named[T]] {
	return manyDirsNode[T]{body: body}
}

type manyDirsNode[T any] struct {
	body Node[T]
}

func (n manyDirsNode[T]) Read(r *Reader, dir string) ([]Named[T], error) {
	infos, err := afero.ReadDir(r.fs, dir)
	if os.IsNotExist(err) {
		return nil, &StructureError{Path: dir, Kind: KindDirectory}
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)

	out := make([]Named[T], 0, len(names))
	for _, name := range names {
		v, err := n.body.Read(r, filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, Named[T]{Name: name, Value: v})
	}
	return out, nil
}

func (n manyDirsNode[T]) Write(w *Writer, dir string, v []Named[T]) error {
	for _, named := range v {
		path := filepath.Join(dir, named.Name)
		if err := w.fs.MkdirAll(path, 0o755); err != nil {
			return err
		}
		if err := n.body.Write(w, path, named.Value); err != nil {
			return err
		}
	}
	return nil
}
