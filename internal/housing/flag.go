package housing

import (
	"fmt"
	"strconv"
)

// UnknownFlag is the text a yes/no column carries when no row had a usable
// answer and the imputer fell back to the placeholder.
const UnknownFlag = "Unknown"

// Flag is a yes/no cell of the cleaned file. Besides the boolean spellings
// strconv.ParseBool accepts it holds UnknownFlag, which is loaded as text.
type Flag struct {
	Value bool
	Known bool
}

// UnmarshalText implements encoding.TextUnmarshaler for csvutil.
func (f *Flag) UnmarshalText(b []byte) error {
	s := string(b)
	if s == UnknownFlag {
		*f = Flag{}
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("housing: flag %q: %w", s, err)
	}
	*f = Flag{Value: v, Known: true}
	return nil
}

// MarshalText writes the flag the way the cleaning pipeline formats it.
func (f Flag) MarshalText() ([]byte, error) {
	if !f.Known {
		return []byte(UnknownFlag), nil
	}
	if f.Value {
		return []byte("True"), nil
	}
	return []byte("False"), nil
}

// DBValue is the value handed to the database: a bool, or UnknownFlag.
func (f Flag) DBValue() any {
	if !f.Known {
		return UnknownFlag
	}
	return f.Value
}
