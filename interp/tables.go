package interp

import (
	"regexp"

	"github.com/rubiojr/bangtag/status"
)

const (
	// Shrug is what the shrug directive emits.
	Shrug = `¯\_(ツ)_/¯`
	// DraftMarker is prepended once to messages that ran the draft directive.
	DraftMarker = "📝 draft\n\n"
	// DraftTag is attached to drafts. It bypasses tag validation and is
	// never counted as trending.
	DraftTag = "self.draft"
	// DraftVisibility is the most restricted level; drafts are switched to it.
	DraftVisibility = status.Direct
)

var (
	// tagPattern accepts word-like names that contain at least one letter,
	// underscore or middle dot, so "2024" alone is rejected.
	tagPattern = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_·]*[\p{L}\p{M}_·][\p{L}\p{M}\p{N}_·]*$`)
	// shortcodePattern is what emoji shortcodes must look like.
	shortcodePattern = regexp.MustCompile(`^\w+$`)
	hexPattern       = regexp.MustCompile(`^[0-9A-Fa-f]{1,5}$`)
)

// charNames resolves names for the char directive. The two-character
// spellings \n, \r and \t are names like any other and map to the control
// characters they suggest.
var charNames = map[string]string{
	`\n`:          "\n",
	"nl":          "\n",
	"lf":          "\n",
	"newline":     "\n",
	`\r`:          "\r",
	"cr":          "\r",
	`\t`:          "\t",
	"tab":         "\t",
	"space":       " ",
	"nbsp":        "\u00a0",
	"shy":         "\u00ad",
	"zws":         "\u200b",
	"zwsp":        "\u200b",
	"zwnj":        "\u200c",
	"zwj":         "\u200d",
	"lrm":         "\u200e",
	"rlm":         "\u200f",
	"wj":          "\u2060",
	"bang":        "!",
	"hash":        "#",
	"colon":       ":",
	"backslash":   `\`,
	"lbrace":      "{",
	"rbrace":      "}",
	"bullet":      "•",
	"middot":      "·",
	"ellipsis":    "…",
	"emdash":      "\u2014",
	"endash":      "–",
	"degree":      "°",
	"section":     "§",
	"pilcrow":     "¶",
	"interrobang": "‽",
}

// separators are the named separators of the join directive.
var separators = map[string]string{
	"comma":     ", ",
	"space":     " ",
	"newline":   "\n",
	"nl":        "\n",
	"tab":       "\t",
	"colon":     ":",
	"semicolon": "; ",
	"pipe":      " | ",
	"dot":       ".",
	"slash":     "/",
	"bullet":    " • ",
	"none":      "",
	"empty":     "",
}

var visibilities = map[string]status.Visibility{
	"public":    status.Public,
	"normal":    status.Public,
	"everyone":  status.Public,
	"unlisted":  status.Unlisted,
	"quiet":     status.Unlisted,
	"private":   status.Private,
	"followers": status.Private,
	"fo":        status.Private,
	"direct":    status.Direct,
	"dm":        status.Direct,
	"mentioned": status.Direct,
	"limited":   status.Direct,
}

var contentTypes = map[string]status.ContentType{
	"plain":    status.Plain,
	"text":     status.Plain,
	"txt":      status.Plain,
	"markdown": status.Markdown,
	"md":       status.Markdown,
	"html":     status.HTML,
}

// keyboard maps each key of a QWERTY layout to its neighbours. keysmash
// walks it.
var keyboard = map[byte]string{
	'q': "wa",
	'w': "qeas",
	'e': "wrsd",
	'r': "etdf",
	't': "ryfg",
	'y': "tugh",
	'u': "yihj",
	'i': "uojk",
	'o': "ipkl",
	'p': "ol;",
	'a': "qwsz",
	's': "awedxz",
	'd': "serfcx",
	'f': "drtgvc",
	'g': "ftyhbv",
	'h': "gyujnb",
	'j': "huikmn",
	'k': "jiolm",
	'l': "kop;",
	';': "lp",
	'z': "asx",
	'x': "zsdc",
	'c': "xdfv",
	'v': "cfgb",
	'b': "vghn",
	'n': "bhjm",
	'm': "njk",
}

// homeRow is where a keysmash starts.
const homeRow = "asdfghjkl;"
