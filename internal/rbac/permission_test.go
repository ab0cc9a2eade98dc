package rbac_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsvista/opsvista/internal/rbac"
)

var _ = Describe("Permission", func() {
	Describe("ParsePermission", func() {
		It("should parse a category:action pair", func() {
			p, err := rbac.ParsePermission("alert:read")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Category).To(Equal(rbac.CategoryAlert))
			Expect(p.Action).To(Equal(rbac.ActionRead))
			Expect(p.Resource).To(BeEmpty())
		})

		It("should parse a resource-scoped permission", func() {
			p, err := rbac.ParsePermission("service:update:api-gateway")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Resource).To(Equal("api-gateway"))
		})

		It("should reject a single segment", func() {
			_, err := rbac.ParsePermission("alert")
			Expect(err).To(HaveOccurred())
		})

		It("should reject four segments", func() {
			_, err := rbac.ParsePermission("alert:read:a:b")
			Expect(err).To(HaveOccurred())
		})

		It("should reject empty segments", func() {
			for _, raw := range []string{":read", "alert:", "alert::x", ""} {
				_, err := rbac.ParsePermission(raw)
				Expect(err).To(HaveOccurred(), "input %q", raw)
			}
		})

		It("should reject an unknown category", func() {
			_, err := rbac.ParsePermission("starship:read")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unknown category"))
		})

		It("should reject an unknown action", func() {
			_, err := rbac.ParsePermission("alert:destroy")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unknown action"))
		})
	})

	Describe("String", func() {
		It("should round-trip every valid permission", func() {
			for _, raw := range []string{"alert:read", "deployment:execute:payments", "system:manage"} {
				p, err := rbac.ParsePermission(raw)
				Expect(err).NotTo(HaveOccurred())
				Expect(p.String()).To(Equal(raw))

				again, err := rbac.ParsePermission(p.String())
				Expect(err).NotTo(HaveOccurred())
				Expect(again).To(Equal(p))
			}
		})
	})

	Describe("Matches", func() {
		It("should let an unscoped grant satisfy a scoped request", func() {
			grant := rbac.MustParsePermission("service:read")
			required := rbac.MustParsePermission("service:read:api-gateway")
			Expect(grant.Matches(required)).To(BeTrue())
		})

		It("should not let a scoped grant satisfy an unscoped request", func() {
			grant := rbac.MustParsePermission("service:read:api-gateway")
			required := rbac.MustParsePermission("service:read")
			Expect(grant.Matches(required)).To(BeFalse())
		})

		It("should match a scoped grant only on the exact resource", func() {
			grant := rbac.MustParsePermission("service:read:api-gateway")
			Expect(grant.Matches(rbac.MustParsePermission("service:read:api-gateway"))).To(BeTrue())
			Expect(grant.Matches(rbac.MustParsePermission("service:read:billing"))).To(BeFalse())
		})

		It("should never match across category or action", func() {
			grant := rbac.MustParsePermission("service:read")
			Expect(grant.Matches(rbac.MustParsePermission("alert:read"))).To(BeFalse())
			Expect(grant.Matches(rbac.MustParsePermission("service:update"))).To(BeFalse())
		})
	})
})
