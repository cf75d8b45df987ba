//go:build debug

// Gomega should not be dependency in non-debug build.

package simplelru

import (
	"errors"
	"log"

	"github.com/facebookgo/stackerr"
	. "github.com/onsi/gomega"
)

var _ = func() (_ struct{}) {
	RegisterFailHandler(GomegaFailHandler)
	return
}()

func GomegaFailHandler(message string, callerSkip ...int) {
	skip := callerSkip[0] + 1
	log.Fatal("FATAL: invariants are broken:", stackerr.WrapSkip(errors.New(message), skip))
}

func (l *LRU[K, V]) checkInvariants() {
	Expect(len(l.table)).To(BeNumerically("<=", l.capacity), "size above capacity")
	Expect(len(l.table)).To(Equal(l.list.live), "table and list disagree on size")
	l.list.checkInvariants()
	for h := l.list.front(); !l.list.end(h); h = l.list.at(h).next {
		th, ok := l.table[l.list.at(h).key]
		Expect(ok).To(BeTrue(), "no table ref to entry")
		Expect(th).To(Equal(h), "table refs another slot")
	}
}

func (l *list[K, V]) checkInvariants() {
	Expect(l.at(fakeFront).prev).To(Equal(noHandle), "front sentinel has prev")
	Expect(l.at(fakeBack).next).To(Equal(noHandle), "back sentinel has next")
	var live int
	for h := l.front(); !l.end(h); h = l.at(h).next {
		live++
		Expect(l.at(l.at(h).prev).next).To(Equal(h), "broken links")
	}
	Expect(l.at(l.back()).next).To(Equal(fakeBack), "back link broken")
	Expect(live).To(Equal(l.live), "live count drifted")
	var free int
	for h := l.free; h != noHandle; h = l.at(h).next {
		free++
	}
	Expect(live+free+sentinels).To(Equal(len(l.slots)), "slot leaked from arena")
}
