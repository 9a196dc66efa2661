package util_test

import (
	"bytes"
	"testing"

	"github.com/agubarev/accounts/pkg/util"
	"github.com/stretchr/testify/assert"
)

type essential struct {
	Name    string
	Enabled bool
}

func TestHashKey(t *testing.T) {
	a := assert.New(t)

	a.Equal(util.HashKey([]byte("art")), util.HashKey([]byte("art")))
	a.NotEqual(util.HashKey([]byte("ab"), []byte("c")), util.HashKey([]byte("a"), []byte("bc")))
}

func TestProtectedChangelog(t *testing.T) {
	a := assert.New(t)

	before := essential{Name: "art", Enabled: true}

	changelog, err := util.ProtectedChangelog(map[string]bool{"Name": true}, before, essential{Name: "arthur", Enabled: true})
	a.NoError(err)
	a.Len(changelog, 1)
	a.Equal("Name", changelog[0].Path[0])

	_, err = util.ProtectedChangelog(map[string]bool{"Name": true}, before, essential{Name: "art", Enabled: false})
	a.Error(err)
}

func TestPrettyPrint(t *testing.T) {
	a := assert.New(t)

	var buf bytes.Buffer
	a.NoError(util.PrettyPrint(&buf, essential{Name: "art", Enabled: true}))
	a.Contains(buf.String(), "\"Name\": \"art\"")
}

func TestExpandPath(t *testing.T) {
	a := assert.New(t)

	p, err := util.ExpandPath("  /tmp/accounts  ")
	a.NoError(err)
	a.Equal("/tmp/accounts", p)

	p, err = util.ExpandPath("~/accounts")
	a.NoError(err)
	a.NotContains(p, "~")
}

func TestNewLoggerOutput(t *testing.T) {
	a := assert.New(t)

	var buf bytes.Buffer

	logger, err := util.NewLogger(false, "", &buf)
	a.NoError(err)

	logger.Info("tables opened")
	logger.Debug("hidden")
	logger.Sync()

	a.Contains(buf.String(), "tables opened")
	a.NotContains(buf.String(), "hidden")
}
