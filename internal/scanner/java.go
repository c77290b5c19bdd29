package scanner

import (
	"fmt"
	"strings"

	"github.com/codewithboateng/diguard/internal/model"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind tokKind
	text string
	line int
}

// tokenize splits Java source into identifiers, literals and single-byte
// punctuation. Comments are dropped; string and char literals keep their
// unquoted body.
func tokenize(src string) []token {
	var out []token
	line, i, n := 1, 0, len(src)
	skip := func(end int) {
		line += strings.Count(src[i:end], "\n")
		i = end
	}
	for i < n {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			i++
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = n - i
			}
			i += end
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				skip(n)
			} else {
				skip(i + 2 + end + 2)
			}
		case strings.HasPrefix(src[i:], `"""`):
			start := line
			end := strings.Index(src[i+3:], `"""`)
			body := ""
			if end < 0 {
				body = src[i+3:]
				skip(n)
			} else {
				body = src[i+3 : i+3+end]
				skip(i + 3 + end + 3)
			}
			out = append(out, token{kind: tokString, text: body, line: start})
		case c == '"' || c == '\'':
			j := i + 1
			for j < n && src[j] != c && src[j] != '\n' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j > n {
				j = n
			}
			out = append(out, token{kind: tokString, text: src[i+1 : j], line: line})
			if j < n && src[j] == c {
				j++
			}
			i = j
		case isIdentByte(c) && !isDigit(c):
			j := i
			for j < n && isIdentByte(src[j]) {
				j++
			}
			out = append(out, token{kind: tokIdent, text: src[i:j], line: line})
			i = j
		case isDigit(c):
			j := i
			for j < n && (isIdentByte(src[j]) || src[j] == '.') {
				j++
			}
			out = append(out, token{kind: tokNumber, text: src[i:j], line: line})
			i = j
		default:
			out = append(out, token{kind: tokPunct, text: src[i : i+1], line: line})
			i++
		}
	}
	return out
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 || isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

// Declaration keywords that carry no modifier in the model.
var ignoredModifiers = map[string]bool{
	"native": true, "strictfp": true, "default": true, "sealed": true,
}

type javaParser struct {
	toks     []token
	pos      int
	file     string
	pkg      string
	classes  []model.Class
	warnings []string
}

// parseJava extracts every class and record declared in src, nested ones
// included. Interfaces, enums and annotation types are listed without
// members.
func parseJava(src, file string) ([]model.Class, []string) {
	p := &javaParser{toks: tokenize(src), file: file}
	for !p.eof() {
		start := p.pos
		switch {
		case p.is(0, "package"):
			p.next()
			p.pkg = p.qualifiedName()
			p.skipPast(";")
		case p.is(0, "import"):
			p.skipPast(";")
		default:
			markers, mods := p.declPrefix()
			if kind, ok := p.typeKeyword(); ok {
				p.typeDecl(kind, markers, mods)
			}
		}
		if p.pos == start {
			p.next()
		}
	}

	out := make([]model.Class, 0, len(p.classes))
	for _, c := range p.classes {
		if c.Package == "" {
			p.warnings = append(p.warnings, fmt.Sprintf("%s: class %s in the default package skipped", c.Source, c.Name))
			continue
		}
		out = append(out, c)
	}
	return out, p.warnings
}

func (p *javaParser) eof() bool { return p.pos >= len(p.toks) }

func (p *javaParser) peek(k int) token {
	if p.pos+k < len(p.toks) {
		return p.toks[p.pos+k]
	}
	return token{kind: tokEOF}
}

func (p *javaParser) next() token {
	t := p.peek(0)
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *javaParser) is(k int, text string) bool {
	t := p.peek(k)
	return (t.kind == tokPunct || t.kind == tokIdent) && t.text == text
}

func (p *javaParser) skipPast(text string) {
	for !p.eof() {
		if p.next().text == text {
			return
		}
	}
}

// skipBalanced consumes from the opening token through its match.
func (p *javaParser) skipBalanced(open, close string) {
	p.collectBalanced(open, close)
}

func (p *javaParser) collectBalanced(open, close string) string {
	if !p.is(0, open) {
		return ""
	}
	var b strings.Builder
	depth := 0
	for !p.eof() {
		t := p.next()
		if t.kind == tokString {
			b.WriteString(`"` + t.text + `"`)
		} else {
			b.WriteString(t.text)
		}
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case open:
			depth++
		case close:
			depth--
		}
		if depth == 0 {
			break
		}
	}
	return b.String()
}

func (p *javaParser) qualifiedName() string {
	var parts []string
	for p.peek(0).kind == tokIdent {
		parts = append(parts, p.next().text)
		if !p.is(0, ".") || p.peek(1).kind != tokIdent {
			break
		}
		p.next()
	}
	return strings.Join(parts, ".")
}

// declPrefix reads annotations and modifiers in front of a declaration.
func (p *javaParser) declPrefix() ([]model.Marker, model.ModifierSet) {
	var markers []model.Marker
	var mods model.ModifierSet
	for !p.eof() {
		t := p.peek(0)
		switch {
		case p.is(0, "@") && !p.is(1, "interface"):
			p.next()
			m := p.annotation()
			if m.Name != "" && !hasMarker(markers, m.Name) {
				markers = append(markers, m)
			}
		case t.kind == tokIdent && ignoredModifiers[t.text]:
			p.next()
		case t.kind == tokIdent && t.text == "non" && p.is(1, "-") && p.is(2, "sealed"):
			p.pos += 3
		case t.kind == tokIdent && t.text == strings.ToLower(t.text):
			m, err := model.ParseModifier(t.text)
			if err != nil {
				return markers, mods
			}
			mods |= model.NewModifierSet(m)
			p.next()
		default:
			return markers, mods
		}
	}
	return markers, mods
}

// annotation parses the name and arguments after '@'. The value is the
// first string literal, or the raw argument text.
func (p *javaParser) annotation() model.Marker {
	qn := p.qualifiedName()
	name := qn[strings.LastIndexByte(qn, '.')+1:]
	if !p.is(0, "(") {
		return model.Marker{Name: name}
	}
	start := p.pos
	raw := p.collectBalanced("(", ")")
	for _, t := range p.toks[start:p.pos] {
		if t.kind == tokString {
			return model.Marker{Name: name, Value: t.text}
		}
	}
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
	raw = strings.TrimPrefix(raw, "value=")
	return model.Marker{Name: name, Value: raw}
}

func hasMarker(ms []model.Marker, name string) bool {
	for _, m := range ms {
		if m.Name == name {
			return true
		}
	}
	return false
}

func (p *javaParser) typeKeyword() (string, bool) {
	switch {
	case p.is(0, "class"), p.is(0, "interface"), p.is(0, "enum"):
		return p.next().text, true
	case p.is(0, "@") && p.is(1, "interface"):
		p.pos += 2
		return "annotation", true
	case p.is(0, "record") && p.peek(1).kind == tokIdent && (p.is(2, "(") || p.is(2, "<")):
		return p.next().text, true
	}
	return "", false
}

func (p *javaParser) typeDecl(kind string, markers []model.Marker, _ model.ModifierSet) {
	name := p.next()
	if name.kind != tokIdent {
		return
	}
	c := model.Class{
		Name:    name.text,
		Package: p.pkg,
		Markers: markers,
		Source:  fmt.Sprintf("%s:%d", p.file, name.line),
	}
	if p.is(0, "<") {
		p.skipBalanced("<", ">")
	}
	if kind == "record" && p.is(0, "(") {
		params, names := p.params()
		for i, n := range names {
			c.Fields = append(c.Fields, model.Field{
				Name:      n,
				Type:      params[i],
				Modifiers: model.NewModifierSet(model.Private, model.Final),
			})
		}
		c.Constructors = append(c.Constructors, model.Constructor{Parameters: params})
	}
	for !p.eof() && !p.is(0, "{") && !p.is(0, ";") {
		p.next()
	}
	if p.is(0, "{") {
		switch kind {
		case "class", "record":
			p.classBody(&c)
		default:
			p.skipBalanced("{", "}")
		}
	}
	p.classes = append(p.classes, c)
}

func (p *javaParser) classBody(c *model.Class) {
	p.next()
	for !p.eof() {
		if p.is(0, "}") {
			p.next()
			return
		}
		start := p.pos
		p.member(c)
		if p.pos == start {
			p.next()
		}
	}
}

func (p *javaParser) member(c *model.Class) {
	if p.is(0, ";") {
		p.next()
		return
	}
	markers, mods := p.declPrefix()
	if p.is(0, "{") {
		p.skipBalanced("{", "}")
		return
	}
	if kind, ok := p.typeKeyword(); ok {
		p.typeDecl(kind, markers, mods)
		return
	}
	if p.is(0, "<") {
		p.skipBalanced("<", ">")
	}
	if p.peek(0).kind != tokIdent {
		return
	}
	if p.is(0, c.Name) {
		switch {
		case p.is(1, "("):
			p.next()
			params, _ := p.params()
			c.Constructors = append(c.Constructors, model.Constructor{Parameters: params})
			p.skipBody()
			return
		case p.is(1, "{"):
			// compact canonical constructor of a record
			p.next()
			p.skipBalanced("{", "}")
			return
		}
	}

	typ := p.typeRef()
	name := p.next()
	if name.kind != tokIdent {
		p.skipMember()
		return
	}
	if p.is(0, "(") {
		p.skipBalanced("(", ")")
		p.skipBody()
		return
	}
	for {
		dims := p.dims()
		c.Fields = append(c.Fields, model.Field{Name: name.text, Type: typ + dims, Modifiers: mods, Markers: markers})
		if p.is(0, "=") {
			p.next()
			p.skipInitializer()
		}
		if !p.is(0, ",") {
			break
		}
		p.next()
		if name = p.next(); name.kind != tokIdent {
			p.skipMember()
			return
		}
	}
	if p.is(0, ";") {
		p.next()
	}
}

// typeRef reads a type such as java.util.Map<K, V>[] or String... and
// returns it without whitespace.
func (p *javaParser) typeRef() string {
	var b strings.Builder
	for p.peek(0).kind == tokIdent {
		b.WriteString(p.next().text)
		if p.is(0, "<") {
			b.WriteString(p.collectBalanced("<", ">"))
		}
		if !p.is(0, ".") || p.peek(1).kind != tokIdent {
			break
		}
		b.WriteString(p.next().text)
	}
	b.WriteString(p.dims())
	if p.is(0, ".") && p.is(1, ".") && p.is(2, ".") {
		p.pos += 3
		b.WriteString("...")
	}
	return b.String()
}

func (p *javaParser) dims() string {
	var b strings.Builder
	for p.is(0, "[") && p.is(1, "]") {
		p.pos += 2
		b.WriteString("[]")
	}
	return b.String()
}

// params reads a parenthesised parameter list and returns the parameter
// types and names.
func (p *javaParser) params() ([]string, []string) {
	types, names := []string{}, []string{}
	if !p.is(0, "(") {
		return types, names
	}
	start := p.pos
	p.skipBalanced("(", ")")
	end := p.pos - 1
	if end <= start {
		return types, names
	}

	var seg []token
	flush := func() {
		if len(seg) == 0 {
			return
		}
		sub := &javaParser{toks: seg}
		sub.declPrefix()
		typ := sub.typeRef()
		name := sub.next()
		if typ != "" && name.kind == tokIdent && name.text != "this" {
			types = append(types, typ+sub.dims())
			names = append(names, name.text)
		}
		seg = nil
	}
	depth := 0
	for _, t := range p.toks[start+1 : end] {
		if t.kind == tokPunct {
			switch t.text {
			case "(", "<", "[", "{":
				depth++
			case ")", ">", "]", "}":
				depth--
			case ",":
				if depth == 0 {
					flush()
					continue
				}
			}
		}
		seg = append(seg, t)
	}
	flush()
	return types, names
}

// skipBody skips a throws clause and then a method body or ';'.
func (p *javaParser) skipBody() {
	for !p.eof() {
		switch {
		case p.is(0, "{"):
			p.skipBalanced("{", "}")
			return
		case p.is(0, ";"):
			p.next()
			return
		case p.is(0, "}"):
			return
		}
		p.next()
	}
}

// skipInitializer stops before the ';' that ends the declaration or before
// a ',' that starts another declarator.
func (p *javaParser) skipInitializer() {
	depth := 0
	for !p.eof() {
		t := p.peek(0)
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return
				}
				depth--
			case ";":
				if depth == 0 {
					return
				}
			case ",":
				if depth == 0 && p.peek(1).kind == tokIdent &&
					(p.is(2, "=") || p.is(2, ",") || p.is(2, ";") || p.is(2, "[")) {
					return
				}
			}
		}
		p.next()
	}
}

func (p *javaParser) skipMember() {
	for !p.eof() {
		switch {
		case p.is(0, ";"):
			p.next()
			return
		case p.is(0, "{"):
			p.skipBalanced("{", "}")
			return
		case p.is(0, "}"):
			return
		}
		p.next()
	}
}
