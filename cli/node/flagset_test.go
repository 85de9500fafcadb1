package node

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFlagSet_Getters(t *testing.T) {
	fset := FlagSet{
		"player":  "alice",
		"config":  "/var/matchgame",
		"tags":    []interface{}{"ranked", "solo"},
		"timeout": float64(1000),
		"score":   20,
		"json":    30.0,
		"frac":    30.1,
		"won":     true,
	}

	require.Equal(t, "alice", fset.String("player"))
	require.Equal(t, "", fset.String("score"))

	require.Equal(t, "/var/matchgame", fset.Path("config"))
	require.Equal(t, "", fset.Path("won"))

	require.Equal(t, []string{"ranked", "solo"}, fset.StringSlice("tags"))
	require.Nil(t, fset.StringSlice("score"))

	require.Equal(t, time.Duration(1000), fset.Duration("timeout"))
	require.Equal(t, time.Duration(0), fset.Duration("score"))

	require.Equal(t, 20, fset.Int("score"))
	require.Equal(t, 30, fset.Int("json"))
	require.Equal(t, 0, fset.Int("frac"))
	require.Equal(t, 0, fset.Int("player"))

	require.True(t, fset.Bool("won"))
	require.False(t, fset.Bool("player"))
	require.False(t, fset.Bool("missing"))
}

func TestFlagSet_ThroughJSON(t *testing.T) {
	in := FlagSet{
		"score":   -12,
		"won":     true,
		"tags":    []string{"a", "b"},
		"timeout": time.Second,
		"config":  "cfg",
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out FlagSet
	require.NoError(t, json.Unmarshal(data, &out))

	require.Equal(t, -12, out.Int("score"))
	require.True(t, out.Bool("won"))
	require.Equal(t, []string{"a", "b"}, out.StringSlice("tags"))
	require.Equal(t, time.Second, out.Duration("timeout"))
	require.Equal(t, "cfg", out.Path("config"))
}
