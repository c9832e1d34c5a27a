// Package decode converts raw process output into text incrementally.
//
// A [Decoder] is stateless and may be shared. The per-stream state, the
// trailing bytes of an incomplete multi-byte sequence plus the underlying
// transformer, lives in a [State] value that callers thread from one
// Decode call to the next. Each output channel of a process gets its own
// State so stdout and stderr never interfere.
//
//	dec := decode.ForLocale()
//	st := dec.NewState()
//	for chunk := range chunks {
//	    var text string
//	    text, st = dec.Decode(st, chunk)
//	    fmt.Print(text)
//	}
//	fmt.Print(dec.Flush(st))
//
// Decoding is chunk-boundary invariant: splitting the input at any byte
// offset yields the same text as decoding it whole. Malformed input is
// replaced with U+FFFD and never reported as an error.
package decode

import (
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const replacement = "�"

// Decoder decodes bytes of a fixed character encoding.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// State is the decoding state of a single stream.
type State struct {
	residue []byte
	tr      transform.Transformer
}

// Pending returns the number of bytes held back waiting for more input.
func (s State) Pending() int {
	return len(s.residue)
}

// New returns a Decoder for the named encoding (any WHATWG label such as
// "utf-8", "latin1", "shift_jis"). An empty name selects UTF-8.
func New(name string) (*Decoder, error) {
	if name == "" {
		return &Decoder{name: "utf-8", enc: unicode.UTF8}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, err
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	return &Decoder{name: canonical, enc: enc}, nil
}

// ForLocale returns a Decoder for the process locale's character set,
// falling back to UTF-8 when the locale names none or an unknown one.
func ForLocale() *Decoder {
	dec, err := New(LocaleCharset())
	if err != nil {
		dec, _ = New("")
	}
	return dec
}

// LocaleCharset extracts the character set from LC_ALL, LC_CTYPE or LANG,
// in that order of precedence. "en_US.UTF-8@euro" yields "UTF-8". The C and
// POSIX locales, and an unset locale, yield "".
func LocaleCharset() string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		if value == "C" || value == "POSIX" {
			return ""
		}
		if i := strings.IndexByte(value, '@'); i >= 0 {
			value = value[:i]
		}
		if i := strings.IndexByte(value, '.'); i >= 0 {
			return value[i+1:]
		}
		return ""
	}
	return ""
}

// Name returns the canonical name of the decoder's encoding.
func (d *Decoder) Name() string {
	return d.name
}

// NewState returns a fresh stream state.
func (d *Decoder) NewState() State {
	return State{tr: d.enc.NewDecoder()}
}

// Decode appends chunk to the residue carried in st and decodes as much as
// possible. Bytes that may begin an incomplete sequence are retained in the
// returned State for the next call.
func (d *Decoder) Decode(st State, chunk []byte) (string, State) {
	if st.tr == nil {
		st = d.NewState()
	}
	src := make([]byte, 0, len(st.residue)+len(chunk))
	src = append(src, st.residue...)
	src = append(src, chunk...)

	text, n := run(st.tr, src, false)
	return text, State{residue: src[n:], tr: st.tr}
}

// Flush decodes whatever residue st holds as the end of the stream.
// Undecodable bytes become U+FFFD. The state must not be reused afterwards.
func (d *Decoder) Flush(st State) string {
	if st.tr == nil || len(st.residue) == 0 {
		return ""
	}
	text, _ := run(st.tr, st.residue, true)
	return text
}

// run feeds src through tr and returns the decoded text plus the number of
// consumed bytes. With atEOF unset, a trailing incomplete sequence is left
// unconsumed.
func run(tr transform.Transformer, src []byte, atEOF bool) (string, int) {
	var sb strings.Builder
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	consumed := 0

	for {
		nDst, nSrc, err := tr.Transform(dst, src[consumed:], atEOF)
		sb.Write(dst[:nDst])
		consumed += nSrc

		switch err {
		case nil:
			return sb.String(), consumed
		case transform.ErrShortDst:
			if nDst == 0 && nSrc == 0 {
				dst = make([]byte, 2*len(dst))
			}
		case transform.ErrShortSrc:
			if !atEOF {
				return sb.String(), consumed
			}
			sb.WriteString(strings.Repeat(replacement, len(src)-consumed))
			return sb.String(), len(src)
		default:
			// Skip one malformed byte; the transformer keeps its own state.
			sb.WriteString(replacement)
			consumed++
		}

		if consumed >= len(src) {
			return sb.String(), consumed
		}
	}
}
