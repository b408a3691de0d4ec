package op

import (
	"errors"
	"strings"
	"testing"

	"github.com/devicelab-dev/sirius/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isEven() Predicate[int] {
	return Check(Describef[int]("%d is even", func(n int) interface{} { return n }), func(n int) bool { return n%2 == 0 })
}

func isPositive() Predicate[int] {
	return Check(func(n int) string { return "positive" }, func(n int) bool { return n > 0 })
}

func failing(err error) Predicate[int] {
	return Func[int, bool]{
		Fn:   func(int) (bool, error) { return false, err },
		Desc: func(int) string { return "failing" },
	}
}

func TestVerify(t *testing.T) {
	assert.NoError(t, Verify(4, isEven()))

	err := Verify(3, isEven())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrVerificationFailed)
	assert.Equal(t, "3 is even", err.Error())
}

func TestVerify_PropagatesApplyErrors(t *testing.T) {
	cause := errors.New("session lost")
	err := Verify(1, failing(cause))
	assert.Same(t, cause, err)
}

func TestVerify_WrapsFailedPreconditions(t *testing.T) {
	missing := core.ErrVerificationFailed.WithMessage("Element with locator 'submit' exists.")
	err := Verify(1, failing(missing))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrVerificationFailed)
	assert.True(t, strings.HasPrefix(err.Error(), "failing"), "got %q", err.Error())
	assert.Contains(t, err.Error(), "exists")

	err = VerifyAll(2, isEven(), failing(missing))
	require.Error(t, err)
	assert.Equal(t, "failing", err.(*core.ExecutionError).Message)
}

func TestVerifyAll(t *testing.T) {
	assert.NoError(t, VerifyAll(2, isEven(), isPositive()))

	err := VerifyAll(-3, isEven(), isPositive())
	require.Error(t, err)
	lines := strings.Split(err.Error(), "\n")
	assert.Equal(t, []string{"-3 is even", "positive"}, lines)

	var ee *core.ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 2, ee.Details["failed"])
}

func TestComposition(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate[int]
		in   int
		want bool
		desc string
	}{
		{"all true", All(isEven(), isPositive()), 2, true, "2 is even and positive"},
		{"all false", All(isEven(), isPositive()), -2, false, "-2 is even and positive"},
		{"any true", Any(isEven(), isPositive()), 3, true, "3 is even or positive"},
		{"any false", Any(isEven(), isPositive()), -3, false, "-3 is even or positive"},
		{"not", Not(isEven()), 3, true, "NOT 3 is even"},
		{"empty all", All[int](), 1, true, ""},
		{"empty any", Any[int](), 1, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pred.Apply(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.desc, tt.pred.Describe(tt.in))
		})
	}
}

func TestComposition_Errors(t *testing.T) {
	cause := errors.New("boom")
	_, err := All(isEven(), failing(cause)).Apply(2)
	assert.ErrorIs(t, err, cause)
	_, err = Any(failing(cause), isEven()).Apply(2)
	assert.ErrorIs(t, err, cause)
	_, err = Not(failing(cause)).Apply(2)
	assert.ErrorIs(t, err, cause)
}

func TestAllOfAnyOf(t *testing.T) {
	assert.True(t, AllOf([]int{2, 4}, isEven()))
	assert.False(t, AllOf([]int{2, 3}, isEven()))
	assert.True(t, AllOf(nil, isEven()))
	assert.True(t, AnyOf([]int{1, 4}, isEven()))
	assert.False(t, AnyOf([]int{1, 3}, isEven()))
	assert.False(t, AnyOf([]int{2}, failing(errors.New("x"))))
}

func TestRunAndGet(t *testing.T) {
	var log []int
	push := func(n int) Action[int] {
		return Do(func(int) string { return "push" }, func(v int) error {
			log = append(log, v+n)
			return nil
		})
	}
	fail := Do(func(v int) string { return "explode" }, func(int) error { return errors.New("bang") })

	require.NoError(t, Run(10, push(1), push(2)))
	assert.Equal(t, []int{11, 12}, log)

	err := Run(10, push(3), fail, push(4))
	assert.EqualError(t, err, "explode: bang")
	assert.Equal(t, []int{11, 12, 13}, log)

	double := New(func(int) string { return "double" }, func(v int) (int, error) { return v * 2, nil })
	v, err := Get[int, int](21, double)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry[int]()
	r.Register("Is Even", func(args ...string) (Predicate[int], error) {
		if err := ExpectArgs("is even", args, 0); err != nil {
			return nil, err
		}
		return isEven(), nil
	})

	for _, name := range []string{"is even", "IS_EVEN", "isEven", "is-even"} {
		p, err := r.Lookup(name)
		require.NoError(t, err, name)
		ok, _ := p.Apply(4)
		assert.True(t, ok)
	}

	_, err := r.Lookup("is even", "extra")
	assert.ErrorIs(t, err, core.ErrInvalidSchema)

	_, err = r.Lookup("is odd")
	assert.ErrorIs(t, err, core.ErrUnknownPredicate)

	assert.Equal(t, []string{"Is Even"}, r.Names())
}
