package gamelist

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

const (
	GameListElement = "gameList"
	GameElement     = "game"
	PathElement     = "path"
	NameElement     = "name"
	DescElement     = "desc"
	ImageElement    = "image"
	VideoElement    = "video"
	MarqueeElement  = "marquee"
	ManualElement   = "manual"
)

// MediaElements are the media fields this tool reads and links, in a fixed order.
var MediaElements = []string{ImageElement, VideoElement, MarqueeElement, ManualElement}

const defaultIndent = "  "

// ErrMalformed marks a gamelist that exists but cannot be parsed.
var ErrMalformed = errors.New("malformed gamelist")

// Field is one child element of a game record.
type Field struct {
	Name  string
	Value string
}

// Document is an ordered gamelist DOM. Everything the tool does not touch
// (other elements, attributes, comments, whitespace) is written back as read.
type Document struct {
	doc  *etree.Document
	root *etree.Element
}

// Record is a single <game> element viewed as an ordered, open set of fields.
type Record struct {
	doc *Document
	el  *etree.Element
}

// New returns an empty gamelist document.
func New() *Document {
	doc := newDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateText("\n")
	root := doc.CreateElement(GameListElement)
	root.CreateText("\n")
	doc.CreateText("\n")
	return &Document{doc: doc, root: root}
}

// newDocument escapes only what XML requires on write, so quotes and
// apostrophes in untouched records keep their original bytes.
func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	return doc
}

// ReadFile loads a gamelist. A missing file yields an empty document and
// exists=false without error; an unparsable one yields an error wrapping ErrMalformed.
func ReadFile(path string) (*Document, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read gamelist %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, true, fmt.Errorf("decode gamelist %s: %w", path, err)
	}
	return doc, true, nil
}

// Parse decodes raw gamelist bytes.
func Parse(data []byte) (*Document, error) {
	doc := newDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	root := doc.Root()
	if root == nil || !strings.EqualFold(root.Tag, GameListElement) {
		return nil, fmt.Errorf("%w: missing %s root element", ErrMalformed, GameListElement)
	}
	return &Document{doc: doc, root: root}, nil
}

// Bytes serialises the document.
func (d *Document) Bytes() ([]byte, error) {
	data, err := d.doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("encode gamelist: %w", err)
	}
	return data, nil
}

// Records returns every <game> record in document order. A single record is
// still a one-element slice.
func (d *Document) Records() []*Record {
	games := d.root.SelectElements(GameElement)
	out := make([]*Record, 0, len(games))
	for _, el := range games {
		out = append(out, &Record{doc: d, el: el})
	}
	return out
}

// Append adds a new record at the end of the list with the given fields.
func (d *Document) Append(fields []Field) *Record {
	l1 := d.recordIndent()
	el := etree.NewElement(GameElement)
	rec := &Record{doc: d, el: el}
	for _, f := range fields {
		el.AddChild(etree.NewText("\n" + l1 + l1))
		el.CreateElement(f.Name).SetText(f.Value)
	}
	if len(fields) > 0 {
		el.AddChild(etree.NewText("\n" + l1))
	}

	idx := len(d.root.Child)
	if idx > 0 && isWhitespace(d.root.Child[idx-1]) {
		idx--
	}
	d.root.InsertChildAt(idx, etree.NewText("\n"+l1))
	d.root.InsertChildAt(idx+1, el)
	if !isWhitespace(d.root.Child[len(d.root.Child)-1]) {
		d.root.AddChild(etree.NewText("\n"))
	}
	return rec
}

// Remove drops a record together with the indentation preceding it.
func (d *Document) Remove(r *Record) {
	if r == nil || r.el.Parent() != d.root {
		return
	}
	idx := r.el.Index()
	if idx > 0 && isWhitespace(d.root.Child[idx-1]) {
		d.root.RemoveChildAt(idx - 1)
		idx--
	}
	d.root.RemoveChildAt(idx)
}

func (d *Document) recordIndent() string {
	for i, tok := range d.root.Child {
		el, ok := tok.(*etree.Element)
		if !ok || el.Tag != GameElement || i == 0 {
			continue
		}
		if cd, ok := d.root.Child[i-1].(*etree.CharData); ok && cd.IsWhitespace() {
			if ind := afterNewline(cd.Data); ind != "" {
				return ind
			}
		}
	}
	return defaultIndent
}

// Get returns the trimmed text of the named field, or "" when absent.
func (r *Record) Get(name string) string {
	child := r.el.SelectElement(name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

// Set updates the named field, creating it after the existing fields when absent.
func (r *Record) Set(name, value string) {
	if child := r.el.SelectElement(name); child != nil {
		child.SetText(value)
		return
	}
	l1 := r.doc.recordIndent()
	l2 := r.fieldIndent(l1)
	idx := len(r.el.Child)
	if idx > 0 && isWhitespace(r.el.Child[idx-1]) {
		idx--
	}
	el := etree.NewElement(name)
	el.SetText(value)
	r.el.InsertChildAt(idx, etree.NewText("\n"+l2))
	r.el.InsertChildAt(idx+1, el)
	if !isWhitespace(r.el.Child[len(r.el.Child)-1]) {
		r.el.AddChild(etree.NewText("\n" + l1))
	}
}

// Fields lists every child element of the record in document order,
// including the ones this tool does not understand.
func (r *Record) Fields() []Field {
	children := r.el.ChildElements()
	out := make([]Field, 0, len(children))
	for _, child := range children {
		out = append(out, Field{Name: child.Tag, Value: strings.TrimSpace(child.Text())})
	}
	return out
}

// Path returns the stored ROM path.
func (r *Record) Path() string { return r.Get(PathElement) }

// Name returns the stored display name.
func (r *Record) Name() string { return r.Get(NameElement) }

func (r *Record) fieldIndent(l1 string) string {
	for i, tok := range r.el.Child {
		if _, ok := tok.(*etree.Element); !ok || i == 0 {
			continue
		}
		if cd, ok := r.el.Child[i-1].(*etree.CharData); ok && cd.IsWhitespace() {
			if ind := afterNewline(cd.Data); ind != "" {
				return ind
			}
		}
	}
	return l1 + l1
}

func isWhitespace(tok etree.Token) bool {
	cd, ok := tok.(*etree.CharData)
	return ok && cd.IsWhitespace()
}

func afterNewline(s string) string {
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return s[i+1:]
	}
	return s
}
