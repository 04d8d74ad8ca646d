package eval

func each[X any, Y any](f func(X) Y, xs []X) []Y {
	ys := make([]Y, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	return ys
}

func cloneSlice[T any](s []T) []T {
	return append([]T(nil), s...)
}
