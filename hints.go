package deltacodec

import (
	"strconv"
	"strings"

	"github.com/mewkiz/pkg/errutil"
)

// rawHints is the struct-tag hint vocabulary of spec §3's table, parsed at
// the string level — a `delta:"..."` tag is a ';'-separated list of tokens,
// each either a bare flag (always, diff, fixed, complete, default, union) or
// a key=value pair (bits=..., subbits=...). Token values may themselves
// contain ',' and ':' (subbits lists, fixed-point pairs), which is why
// tokens are ';'-separated rather than ','-separated.
type rawHints struct {
	Always, Diff, Fixed, Complete, Default, Union bool
	Bits                                           string
	Subbits                                        string
}

const tagKey = "delta"

// parseTag reads the `delta:"..."` tag on a field, variant, or named type.
// An empty tag yields the zero rawHints (every hint unset) and a nil error.
func parseTag(tag string) (rawHints, error) {
	var h rawHints
	if tag == "" {
		return h, nil
	}
	for _, tok := range strings.Split(tag, ";") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key, value, hasValue := strings.Cut(tok, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "always":
			h.Always = true
		case "diff":
			h.Diff = true
		case "fixed":
			h.Fixed = true
		case "complete":
			h.Complete = true
		case "default":
			h.Default = true
		case "union":
			h.Union = true
		case "bits":
			if !hasValue {
				return h, errutil.Newf("delta tag: bits requires a value (tag %q)", tag)
			}
			h.Bits = value
		case "subbits":
			if !hasValue {
				return h, errutil.Newf("delta tag: subbits requires a value (tag %q)", tag)
			}
			h.Subbits = value
		default:
			return h, errutil.Newf("delta tag: unknown hint %q (tag %q)", key, tag)
		}
	}
	return h, nil
}

// parseIntBits parses a plain bits(N) declaration (an integer or boolean
// field's width).
func parseIntBits(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errutil.Newf("delta tag: invalid bits width %q: %v", s, err)
	}
	return n, nil
}

// parseFixedPair parses one "I:F" fixed-point pair.
func parseFixedPair(s string) (i, f int, err error) {
	is, fs, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, errutil.Newf("delta tag: invalid fixed-point pair %q, want I:F", s)
	}
	i, err = strconv.Atoi(strings.TrimSpace(is))
	if err != nil {
		return 0, 0, errutil.Newf("delta tag: invalid fixed-point integer bits %q: %v", is, err)
	}
	f, err = strconv.Atoi(strings.TrimSpace(fs))
	if err != nil {
		return 0, 0, errutil.Newf("delta tag: invalid fixed-point fractional bits %q: %v", fs, err)
	}
	return i, f, nil
}

// parseSubWidths parses a subbits("a,b,...") integer option list.
func parseSubWidths(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	widths := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := parseIntBits(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		widths = append(widths, n)
	}
	return widths, nil
}

// parseSubFixed parses a subbits("I1:F1,I2:F2,...,-1:-1") float option list.
// A pair of "-1:-1" marks the escape slot.
func parseSubFixed(s string) ([]subFixedOption, error) {
	parts := strings.Split(s, ",")
	opts := make([]subFixedOption, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		i, f, err := parseFixedPair(p)
		if err != nil {
			return nil, err
		}
		if i == -1 && f == -1 {
			opts = append(opts, subFixedOption{escape: true})
			continue
		}
		opts = append(opts, subFixedOption{i: i, f: f})
	}
	return opts, nil
}

type subFixedOption struct {
	i, f   int
	escape bool
}
