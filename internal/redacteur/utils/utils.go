// Вспомогательные функции для работы со слайсами, множествами и итераторами.
//
// Основные возможности:
//   - Преобразование слайсов в множества (map[T]struct{}).
//   - Проверка наличия элементов во множестве или слайсе.
//   - Преобразование слайсов в слайсы другого типа с применением функции.
//   - Фильтрация последовательностей iter.Seq.
package utils

import (
	"iter"
)

func SliceToSet[T comparable](ids []T) map[T]struct{} {
	res := make(map[T]struct{})
	for _, id := range ids {
		res[id] = struct{}{}
	}
	return res
}

func CheckInSet[T comparable](set map[T]struct{}, all ...T) bool {
	for _, el := range all {
		if _, ok := set[el]; ok {
			return true
		}
	}
	return false
}

func CheckInSlice[T comparable](in []T, all ...T) bool {
	set := SliceToSet(in)
	return CheckInSet(set, all...)
}

func SliceToSlice[T any, U any](in *[]T, f func(*T) U) []U {
	if in == nil {
		return make([]U, 0)
	}
	out := make([]U, len(*in))
	for i, v := range *in {
		out[i] = f(&v)
	}
	return out
}

func Filter[T any](seq iter.Seq[T], by func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range seq {
			if by(i) {
				if !yield(i) {
					return
				}
			}
		}
	}
}

func All[T any](res []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range res {
			if !yield(res[i]) {
				return
			}
		}
	}
}

// Collect собирает последовательность в слайс. Пустая последовательность дает пустой, не nil, слайс.
func Collect[T any](seq iter.Seq[T]) []T {
	out := make([]T, 0)
	seq(func(val T) bool {
		out = append(out, val)
		return true
	})
	return out
}
