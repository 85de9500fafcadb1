package cli

import "time"

// StringFlag defines a flag holding a string.
//
// - implements cli.Flag
type StringFlag struct {
	Name     string
	Aliases  []string
	Usage    string
	Required bool
	Value    string
}

// FlagName implements cli.Flag.
func (flag StringFlag) FlagName() string {
	return flag.Name
}

// StringSliceFlag defines a flag that can be repeated to build a list of
// strings.
//
// - implements cli.Flag
type StringSliceFlag struct {
	Name     string
	Aliases  []string
	Usage    string
	Required bool
	Value    []string
}

// FlagName implements cli.Flag.
func (flag StringSliceFlag) FlagName() string {
	return flag.Name
}

// DurationFlag defines a flag parsed as a duration like "1m30s".
//
// - implements cli.Flag
type DurationFlag struct {
	Name     string
	Aliases  []string
	Usage    string
	Required bool
	Value    time.Duration
}

// FlagName implements cli.Flag.
func (flag DurationFlag) FlagName() string {
	return flag.Name
}

// IntFlag defines a flag holding an integer, such as a score.
//
// - implements cli.Flag
type IntFlag struct {
	Name     string
	Aliases  []string
	Usage    string
	Required bool
	Value    int
}

// FlagName implements cli.Flag.
func (flag IntFlag) FlagName() string {
	return flag.Name
}

// BoolFlag defines a switch. It is false unless present on the command line.
//
// - implements cli.Flag
type BoolFlag struct {
	Name     string
	Aliases  []string
	Usage    string
	Required bool
	Value    bool
}

// FlagName implements cli.Flag.
func (flag BoolFlag) FlagName() string {
	return flag.Name
}
