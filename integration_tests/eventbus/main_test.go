package eventbus_test

import (
	"os"
	"testing"

	"github.com/RelicDragon/bandeja-sub007/integration_tests/testutils"
)

func TestMain(m *testing.M) {
	code := m.Run()
	testutils.CleanupShared()
	os.Exit(code)
}
