package validation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsvista/opsvista/internal"
	"github.com/opsvista/opsvista/internal/core/common/validation"
)

var _ = Describe("ValidationBuilder", func() {
	It("passes when every rule holds", func() {
		v := validation.NewValidator()
		v.Field("email", "dev@acme.dev").Required().Email()
		v.Field("name", "Devi").Required().MaxLength(120)

		Expect(v.Validate()).To(BeNil())
	})

	It("collects one entry per failing field", func() {
		v := validation.NewValidator()
		v.Field("email", "not-an-email").Required().Email()
		v.Field("name", "").Required()

		appErr := v.Validate()
		Expect(appErr).NotTo(BeNil())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))

		details, ok := appErr.Details.(internal.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(2))
		Expect(details.Errors[0].Field).To(Equal("email"))
		Expect(details.Errors[1].Field).To(Equal("name"))
	})

	It("rejects addresses without a domain", func() {
		for _, bad := range []string{"plain", "@acme.dev", "dev@", "dev@acme"} {
			v := validation.NewValidator()
			v.Field("email", bad).Email()
			Expect(v.Validate()).NotTo(BeNil(), "expected %q to be rejected", bad)
		}
	})

	It("enforces length bounds", func() {
		v := validation.NewValidator()
		v.Field("password", "short").MinLength(8)

		appErr := v.Validate()
		Expect(appErr).NotTo(BeNil())

		details := appErr.Details.(internal.ValidationErrors)
		Expect(details.Errors[0].Message).To(ContainSubstring("at least 8 characters"))
	})

	It("restricts values with OneOf", func() {
		v := validation.NewValidator()
		v.Field("severity", "catastrophic").OneOf("critical", "warning", "info")

		appErr := v.Validate()
		Expect(appErr).NotTo(BeNil())

		details := appErr.Details.(internal.ValidationErrors)
		Expect(details.Errors[0].Message).To(ContainSubstring("must be one of"))
	})

	It("treats zero int64 values as missing", func() {
		v := validation.NewValidator()
		v.Field("organization_id", int64(0)).Required()

		Expect(v.Validate()).NotTo(BeNil())
	})
})
