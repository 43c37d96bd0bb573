package core_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/valversity/ngnfs-go/cmn/cos"
	"github.com/valversity/ngnfs-go/core"
	"github.com/valversity/ngnfs-go/core/meta"
)

func mustMap(addrs ...string) *meta.Map {
	m := &meta.Map{}
	for _, a := range addrs {
		ep, err := meta.ParseEndpoint(a)
		Expect(err).NotTo(HaveOccurred())
		m.Devd.Addrs = append(m.Devd.Addrs, ep)
	}
	return m
}

var _ = Describe("MapInfo", func() {
	var mi *core.MapInfo

	BeforeEach(func() {
		mi = core.NewMapInfo()
	})

	It("fails lookups before any publication", func() {
		_, err := mi.Lookup(0)
		Expect(err).To(MatchError(cos.ErrNotReady))
	})

	It("maps block numbers modulo the published map size", func() {
		m := mustMap("10.0.0.1:5000", "10.0.0.2:5000", "10.0.0.3:5000")
		mi.Publish(m)

		for bnr, want := range map[uint64]int{0: 0, 1: 1, 2: 2, 3: 0, 255: 0} {
			ep, err := mi.Lookup(bnr)
			Expect(err).NotTo(HaveOccurred())
			Expect(ep).To(Equal(m.Devd.Addrs[want]))
		}
	})

	It("wakes WaitUntilNonEmpty exactly on the empty-to-non-empty transition", func() {
		done := make(chan error, 1)
		go func() {
			done <- mi.WaitUntilNonEmpty(context.Background())
		}()

		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())

		mi.Publish(mustMap("10.0.0.1:5000"))

		Eventually(done, time.Second).Should(Receive(BeNil()))
	})

	It("returns a shutdown error when the wait context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- mi.WaitUntilNonEmpty(ctx)
		}()

		cancel()
		Eventually(done, time.Second).Should(Receive(MatchError(cos.ErrShutdown)))
	})

	It("lets a reader finish against the map it observed across a concurrent republish", func() {
		m0 := mustMap("10.0.0.1:5000")
		mi.Publish(m0)

		snap, err := mi.CurrentSnapshot()
		Expect(err).NotTo(HaveOccurred())

		mi.Publish(mustMap("10.0.0.2:5000", "10.0.0.3:5000"))

		// snap is the reader's own copy: publishing again must not mutate it.
		Expect(snap.Devd.Addrs).To(Equal(m0.Devd.Addrs))

		ep, err := mi.Lookup(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ep.Port).To(Equal(uint16(5000)))
		Expect(ep.Addr[3]).To(Equal(byte(2)))
	})
})
