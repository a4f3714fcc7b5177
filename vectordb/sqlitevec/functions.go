package sqlitevec

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/sqlite-vec/engine"
	"github.com/viant/sqlite-vec/vector"
	"modernc.org/sqlite"
)

const (
	// cosineFunc and l2Func are registered by the sqlite-vec engine.
	cosineFunc = "vec_cosine"
	l2Func     = "vec_l2"
	dotFunc    = "vecindex_dot"
)

var registerOnce sync.Once
var registerErr error

// registerFunctions makes the distance functions available to connections
// opened after the call.
func registerFunctions() error {
	registerOnce.Do(func() {
		if err := engine.RegisterVectorFunctions(nil); err != nil {
			registerErr = fmt.Errorf("register vector functions: %w", err)
			return
		}
		if err := sqlite.RegisterDeterministicScalarFunction(dotFunc, 2, dotImpl); err != nil {
			registerErr = fmt.Errorf("register %s: %w", dotFunc, err)
		}
	})
	return registerErr
}

func dotImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected 2 arguments, got %d", dotFunc, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, err
	}
	if a == nil || b == nil {
		return nil, nil
	}
	return dotProduct(a, b)
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	}
	return nil, fmt.Errorf("unsupported embedding argument type %T", arg)
}

func dotProduct(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dot dim mismatch %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}
