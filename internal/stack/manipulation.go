package stack

import (
	"luavm/internal/errors"
	"luavm/internal/value"
)

// CheckStack ensures at least n further slots are available above Top,
// growing the register file if needed. Always succeeds (the register
// file grows on demand); kept bool-returning to match the host API's
// check_stack surface (spec §6.1).
func (f *Frame) CheckStack(n int) bool {
	f.ensureCapacity(f.Top + n)
	return true
}

// PushValue pushes v onto the top of the frame's stack.
func (f *Frame) PushValue(v value.Value) {
	f.ensureCapacity(f.Top + 1)
	f.Slots[f.Top] = v
	f.Top++
}

// Pop discards the top n values.
func (f *Frame) Pop(n int) error {
	if n < 0 || n > f.Top {
		return errOutOfRange("pop", n)
	}
	for i := f.Top - n; i < f.Top; i++ {
		f.Slots[i] = value.Nil()
	}
	f.Top -= n
	return nil
}

// SetTop implements spec §6.1's set_top(idx): grows with Nil or
// truncates, per the same index algebra Get/Set use.
func (f *Frame) SetTop(idx int) error {
	newTop := f.AbsIndex(idx)
	if newTop < 0 {
		return errOutOfRange("set_top", idx)
	}
	if newTop > f.Top {
		f.ensureCapacity(newTop)
		for i := f.Top; i < newTop; i++ {
			f.Slots[i] = value.Nil()
		}
	} else {
		for i := newTop; i < f.Top; i++ {
			f.Slots[i] = value.Nil()
		}
	}
	f.Top = newTop
	return nil
}

// Copy implements spec §6.1's copy(from,to): overwrite the slot at to
// with the value at from, without touching Top.
func (f *Frame) Copy(from, to int) error {
	v := f.Get(from)
	return f.Set(to, v)
}

// Replace implements spec §6.1's replace(idx): pop the top value and
// store it at idx.
func (f *Frame) Replace(idx int) error {
	if f.Top < 1 {
		return errOutOfRange("replace", idx)
	}
	v := f.Slots[f.Top-1]
	f.Slots[f.Top-1] = value.Nil()
	f.Top--
	return f.Set(idx, v)
}

// Insert implements spec §6.1's insert(idx): moves the top value into
// position idx, shifting values above it up by one.
func (f *Frame) Insert(idx int) error {
	abs := f.AbsIndex(idx)
	if abs < 1 || abs > f.Top {
		return errOutOfRange("insert", idx)
	}
	v := f.Slots[f.Top-1]
	for i := f.Top - 1; i > abs-1; i-- {
		f.Slots[i] = f.Slots[i-1]
	}
	f.Slots[abs-1] = v
	return nil
}

// Remove implements spec §6.1's remove(idx): removes the value at idx,
// shifting values above it down by one.
func (f *Frame) Remove(idx int) error {
	abs := f.AbsIndex(idx)
	if abs < 1 || abs > f.Top {
		return errOutOfRange("remove", idx)
	}
	for i := abs - 1; i < f.Top-1; i++ {
		f.Slots[i] = f.Slots[i+1]
	}
	f.Slots[f.Top-1] = value.Nil()
	f.Top--
	return nil
}

// Rotate implements spec §6.1's rotate(idx,n): rotates the slots
// between idx and Top so that the n topmost values move to begin at
// idx (n may be negative to rotate the other way).
func (f *Frame) Rotate(idx, n int) error {
	abs := f.AbsIndex(idx)
	if abs < 1 || abs > f.Top {
		return errOutOfRange("rotate", idx)
	}
	seg := f.Slots[abs-1 : f.Top]
	m := len(seg)
	if m == 0 {
		return nil
	}
	shift := ((n % m) + m) % m
	rotated := make([]value.Value, m)
	for i := 0; i < m; i++ {
		rotated[(i+shift)%m] = seg[i]
	}
	copy(seg, rotated)
	return nil
}

func errOutOfRange(op string, idx int) error {
	return errors.NewStackError("%s: index %d out of range", op, idx)
}
