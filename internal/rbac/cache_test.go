package rbac_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsvista/opsvista/internal/rbac"
)

var _ = Describe("DecisionCache", func() {
	granted := rbac.PermissionCheckResult{Granted: true, Reason: "granted by role"}

	Describe("Get and Set", func() {
		It("should return a stored result before the TTL elapses", func() {
			cache := rbac.NewDecisionCache(time.Minute)
			key := rbac.Key(1, rbac.MustParsePermission("alert:read"), 10)

			cache.Set(key, 1, granted)
			result, ok := cache.Get(key)
			Expect(ok).To(BeTrue())
			Expect(result.Granted).To(BeTrue())
		})

		It("should miss on an unknown key", func() {
			cache := rbac.NewDecisionCache(time.Minute)
			_, ok := cache.Get("nope")
			Expect(ok).To(BeFalse())
		})

		It("should expire entries lazily after the TTL", func() {
			cache := rbac.NewDecisionCache(10 * time.Millisecond)
			key := rbac.Key(1, rbac.MustParsePermission("alert:read"), 10)

			cache.Set(key, 1, granted)
			time.Sleep(25 * time.Millisecond)

			_, ok := cache.Get(key)
			Expect(ok).To(BeFalse())
			Expect(cache.Stats().Entries).To(BeZero())
		})

		It("should produce distinct keys per resource and organization", func() {
			base := rbac.Key(1, rbac.MustParsePermission("service:read"), 10)
			scoped := rbac.Key(1, rbac.MustParsePermission("service:read:api"), 10)
			otherOrg := rbac.Key(1, rbac.MustParsePermission("service:read"), 11)
			Expect(base).NotTo(Equal(scoped))
			Expect(base).NotTo(Equal(otherOrg))
		})
	})

	Describe("Stats", func() {
		It("should count every lookup as exactly one hit or miss", func() {
			cache := rbac.NewDecisionCache(time.Minute)
			key := rbac.Key(1, rbac.MustParsePermission("alert:read"), 0)

			cache.Get(key)
			cache.Set(key, 1, granted)
			cache.Get(key)
			cache.Get(key)

			stats := cache.Stats()
			Expect(stats.Hits).To(Equal(uint64(2)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.HitRatio).To(BeNumerically("~", 2.0/3.0, 0.001))
		})

		It("should keep counters across Clear", func() {
			cache := rbac.NewDecisionCache(time.Minute)
			key := rbac.Key(1, rbac.MustParsePermission("alert:read"), 0)

			cache.Set(key, 1, granted)
			cache.Get(key)
			removed := cache.Clear()
			Expect(removed).To(Equal(1))

			stats := cache.Stats()
			Expect(stats.Entries).To(BeZero())
			Expect(stats.Hits).To(Equal(uint64(1)))

			_, ok := cache.Get(key)
			Expect(ok).To(BeFalse())
			Expect(cache.Stats().Misses).To(Equal(uint64(1)))
		})
	})

	Describe("InvalidateUser", func() {
		It("should drop only the target user's entries", func() {
			cache := rbac.NewDecisionCache(time.Minute)
			perm := rbac.MustParsePermission("alert:read")

			keyA1 := rbac.Key(1, perm, 0)
			keyA2 := rbac.Key(1, perm.WithResource("api"), 0)
			keyB := rbac.Key(2, perm, 0)
			cache.Set(keyA1, 1, granted)
			cache.Set(keyA2, 1, granted)
			cache.Set(keyB, 2, granted)

			removed := cache.InvalidateUser(1)
			Expect(removed).To(Equal(2))

			_, ok := cache.Get(keyA1)
			Expect(ok).To(BeFalse())
			_, ok = cache.Get(keyB)
			Expect(ok).To(BeTrue())
		})
	})

	Describe("bounded size", func() {
		It("should evict when full instead of growing", func() {
			cache := rbac.NewDecisionCache(time.Minute, rbac.WithMaxEntries(5))
			perm := rbac.MustParsePermission("alert:read")
			for i := int64(1); i <= 10; i++ {
				cache.Set(rbac.Key(i, perm, 0), i, granted)
			}
			Expect(cache.Stats().Entries).To(BeNumerically("<=", 5))
		})
	})

	Describe("concurrent access", func() {
		It("should survive parallel readers and writers", func() {
			cache := rbac.NewDecisionCache(time.Minute)
			perm := rbac.MustParsePermission("alert:read")

			done := make(chan struct{})
			for w := 0; w < 4; w++ {
				go func(w int) {
					defer GinkgoRecover()
					for i := 0; i < 200; i++ {
						key := rbac.Key(int64(i%7), perm, int64(w))
						cache.Set(key, int64(i%7), granted)
						cache.Get(key)
						if i%50 == 0 {
							cache.InvalidateUser(int64(i % 7))
						}
					}
					done <- struct{}{}
				}(w)
			}
			for w := 0; w < 4; w++ {
				Eventually(done, time.Second).Should(Receive())
			}

			stats := cache.Stats()
			Expect(stats.Hits + stats.Misses).To(Equal(uint64(4 * 200)))
		})
	})

	Describe("background sweep", func() {
		It("should reclaim expired entries without changing lookups", func() {
			cache := rbac.NewDecisionCache(5 * time.Millisecond)
			defer cache.Stop()
			cache.StartSweep(10 * time.Millisecond)

			perm := rbac.MustParsePermission("alert:read")
			for i := int64(1); i <= 20; i++ {
				cache.Set(rbac.Key(i, perm, 0), i, granted)
			}

			Eventually(func() int {
				return cache.Stats().Entries
			}, time.Second, 10*time.Millisecond).Should(BeZero())
		})
	})
})

var _ = Describe("Key", func() {
	It("should be stable for identical inputs", func() {
		perm := rbac.MustParsePermission("deployment:execute:payments")
		Expect(rbac.Key(42, perm, 7)).To(Equal(rbac.Key(42, perm, 7)))
		Expect(rbac.Key(42, perm, 7)).To(Equal("42|deployment:execute|payments|7"))
	})
})
