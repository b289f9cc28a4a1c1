package sgf

import (
	"strings"

	"goban/internal/domain/game"
)

func defaultProperties() Properties {
	return Properties{
		{Key: KeyGame, Value: defaultGame},
		{Key: KeyFormat, Value: defaultFmt},
		{Key: KeySize, Value: defaultSzStr},
		{Key: KeyKomi, Value: DefaultKomi},
		{Key: KeyWhite, Value: "White"},
		{Key: KeyBlack, Value: "Black"},
	}
}

// Serialize writes moves and properties as a single-line transcript.
// Caller properties override the defaults GM, FF, SZ, KM, PW, PB in that
// order; other keys follow in the order given. Values are not escaped.
func Serialize(moves []game.Move, props Properties) string {
	merged := defaultProperties()
	for _, prop := range props {
		merged.Set(prop.Key, prop.Value)
	}

	var builder strings.Builder
	builder.WriteString("(;")
	for _, prop := range merged {
		builder.WriteString(prop.Key)
		builder.WriteByte('[')
		builder.WriteString(prop.Value)
		builder.WriteByte(']')
	}
	for _, m := range moves {
		builder.WriteString(m.Color.String())
		builder.WriteByte('[')
		if !m.Pass {
			builder.WriteString(EncodePoint(m.Point))
		}
		builder.WriteByte(']')
	}
	builder.WriteString(")")
	return builder.String()
}
