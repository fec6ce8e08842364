package doctree

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// MainPart is the name of the main document part.
const MainPart = "word/document.xml"

// Relationship is one entry of a part's relationships file.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships is the root element of a .rels part.
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Relationship []Relationship `xml:"Relationship"`
}

// Package gives ordered access to the parts of a DOCX archive. Parts replaced
// through SetPart are written in place of the original bytes on save.
type Package struct {
	files    []*zip.File
	index    map[string]*zip.File
	replaced map[string][]byte
}

// OpenPackage reads a DOCX archive.
func OpenPackage(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	p := &Package{
		files:    zr.File,
		index:    make(map[string]*zip.File, len(zr.File)),
		replaced: make(map[string][]byte),
	}
	for _, f := range zr.File {
		p.index[f.Name] = f
	}

	if _, ok := p.index[MainPart]; !ok {
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", MainPart)
	}
	return p, nil
}

// OpenPackageBytes is OpenPackage over an in-memory archive.
func OpenPackageBytes(data []byte) (*Package, error) {
	return OpenPackage(bytes.NewReader(data), int64(len(data)))
}

// OpenPackageFile reads a DOCX archive from disk.
func OpenPackageFile(name string) (*Package, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return OpenPackageBytes(data)
}

// Has reports whether the package contains the named part.
func (p *Package) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// PartNames lists part names in archive order.
func (p *Package) PartNames() []string {
	names := make([]string, 0, len(p.files))
	for _, f := range p.files {
		names = append(names, f.Name)
	}
	return names
}

// Part returns the current content of a part.
func (p *Package) Part(name string) ([]byte, error) {
	if data, ok := p.replaced[name]; ok {
		return data, nil
	}
	f, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", name, err)
	}
	return content, nil
}

// SetPart replaces the content of an existing part.
func (p *Package) SetPart(name string, data []byte) error {
	if _, ok := p.index[name]; !ok {
		return fmt.Errorf("part %s not found", name)
	}
	p.replaced[name] = data
	return nil
}

// Relationships returns the relationships of a part. A part without a
// relationships file has none.
func (p *Package) Relationships(partName string) ([]Relationship, error) {
	dir, base := path.Split(partName)
	relPath := path.Join(dir, "_rels", base+".rels")

	if !p.Has(relPath) {
		return nil, nil
	}
	content, err := p.Part(relPath)
	if err != nil {
		return nil, err
	}

	var rels Relationships
	if err := xml.Unmarshal(content, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships of %s: %w", partName, err)
	}
	return rels.Relationship, nil
}

// ResolveTarget turns a relationship target of partName into a part name.
func ResolveTarget(partName, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(partName), target))
}

// WriteTo writes the archive with replaced parts substituted. Parts are
// written in their original order and untouched parts are copied without
// recompression, so equal inputs produce equal bytes.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	for _, f := range p.files {
		data, ok := p.replaced[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return cw.n, fmt.Errorf("failed to copy part %s: %w", f.Name, err)
			}
			continue
		}

		hdr := &zip.FileHeader{Name: f.Name, Method: zip.Deflate}
		pw, err := zw.CreateHeader(hdr)
		if err != nil {
			return cw.n, fmt.Errorf("failed to create part %s: %w", f.Name, err)
		}
		if _, err := pw.Write(data); err != nil {
			return cw.n, fmt.Errorf("failed to write part %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
