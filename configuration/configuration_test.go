package configuration

import (
	"testing"

	"github.com/fulldump/biff"
)

func TestDefault(t *testing.T) {

	c := Default()

	biff.AssertEqual(c.Backend, "inproc")
	biff.AssertEqual(c.CallTimeout, "0s")
	biff.AssertEqual(c.Workers, 4)
	biff.AssertEqual(c.Script, "")
	biff.AssertFalse(c.NoColor)
}
