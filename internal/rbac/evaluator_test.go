package rbac_test

import (
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/opsvista/opsvista/internal/rbac"
)

type capturingAudit struct {
	entries []rbac.AuditEntry
}

func (a *capturingAudit) Record(entry rbac.AuditEntry) {
	a.entries = append(a.entries, entry)
}

var _ = Describe("Evaluator", func() {
	var (
		registry  *rbac.Registry
		cache     *rbac.DecisionCache
		evaluator *rbac.Evaluator
		audit     *capturingAudit
		logger    *slog.Logger
	)

	newSubject := func(role string) rbac.Subject {
		return rbac.Subject{UserID: 1, OrganizationID: 10, Role: role, IsActive: true}
	}
	accessCtx := rbac.AccessContext{UserID: 1, OrganizationID: 10, IPAddress: "10.0.0.1"}

	BeforeEach(func() {
		registry = rbac.MustNewRegistry(rbac.RoleDefinitions())
		cache = rbac.NewDecisionCache(time.Minute)
		audit = &capturingAudit{}
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		evaluator = rbac.NewEvaluator(registry, cache, logger, rbac.WithAuditRecorder(audit))
	})

	Describe("CheckPermission", func() {
		It("should grant through the subject's role", func() {
			result := evaluator.CheckPermission(newSubject("viewer"), rbac.MustParsePermission("alert:read"), accessCtx)
			Expect(result.Granted).To(BeTrue())
			Expect(result.Reason).To(Equal(rbac.ReasonRoleGrant))
			Expect(result.Cached).To(BeFalse())
			Expect(result.PermissionsChecked).To(Equal([]string{"alert:read"}))
		})

		It("should grant through inherited role permissions", func() {
			result := evaluator.CheckPermission(newSubject("org_admin"), rbac.MustParsePermission("alert:read"), accessCtx)
			Expect(result.Granted).To(BeTrue())
		})

		It("should grant through a direct user grant", func() {
			subject := newSubject("viewer")
			subject.ExtraPermissions = []string{"deployment:approve"}

			result := evaluator.CheckPermission(subject, rbac.MustParsePermission("deployment:approve"), accessCtx)
			Expect(result.Granted).To(BeTrue())
			Expect(result.Reason).To(Equal(rbac.ReasonUserGrant))
		})

		It("should skip malformed user grants without failing", func() {
			subject := newSubject("viewer")
			subject.ExtraPermissions = []string{"not-a-permission", "cost:read"}

			result := evaluator.CheckPermission(subject, rbac.MustParsePermission("cost:read"), accessCtx)
			Expect(result.Granted).To(BeTrue())
		})

		It("should deny naming the role when the permission is not in it", func() {
			result := evaluator.CheckPermission(newSubject("viewer"), rbac.MustParsePermission("security:manage"), accessCtx)
			Expect(result.Granted).To(BeFalse())
			Expect(result.Reason).To(Equal(rbac.ReasonNotInRole))
		})

		It("should deny naming the ad-hoc grants when they were checked last", func() {
			subject := newSubject("viewer")
			subject.ExtraPermissions = []string{"cost:read"}

			result := evaluator.CheckPermission(subject, rbac.MustParsePermission("security:manage"), accessCtx)
			Expect(result.Granted).To(BeFalse())
			Expect(result.Reason).To(Equal(rbac.ReasonNotInGrants))
		})

		It("should deny inactive subjects regardless of role", func() {
			subject := newSubject("super_admin")
			subject.IsActive = false

			result := evaluator.CheckPermission(subject, rbac.MustParsePermission("alert:read"), accessCtx)
			Expect(result.Granted).To(BeFalse())
			Expect(result.Reason).To(Equal(rbac.ReasonInactiveUser))
		})

		It("should deny when the access context has no user", func() {
			result := evaluator.CheckPermission(newSubject("viewer"), rbac.MustParsePermission("alert:read"), rbac.AccessContext{})
			Expect(result.Granted).To(BeFalse())
			Expect(result.Reason).To(Equal(rbac.ReasonMissingUser))
		})

		It("should treat an unknown role as zero permissions", func() {
			result := evaluator.CheckPermission(newSubject("ghost"), rbac.MustParsePermission("alert:read"), accessCtx)
			Expect(result.Granted).To(BeFalse())
			Expect(result.Reason).To(Equal(rbac.ReasonUnknownRole))
		})

		It("should still honor ad-hoc grants when the role is unknown", func() {
			subject := newSubject("ghost")
			subject.ExtraPermissions = []string{"cost:read"}

			result := evaluator.CheckPermission(subject, rbac.MustParsePermission("cost:read"), accessCtx)
			Expect(result.Granted).To(BeTrue())
			Expect(result.Reason).To(Equal(rbac.ReasonUserGrant))
		})

		Context("super admin bypass", func() {
			It("should grant anything to super_admin without caching", func() {
				result := evaluator.CheckPermission(newSubject("super_admin"), rbac.MustParsePermission("cost:delete"), accessCtx)
				Expect(result.Granted).To(BeTrue())
				Expect(result.Reason).To(Equal(rbac.ReasonSuperAdmin))
				Expect(cache.Stats().Entries).To(BeZero())
			})

			It("should bypass via system:manage even below the priority threshold", func() {
				defs := append(rbac.RoleDefinitions(), rbac.RoleDefinition{
					Name:        "platform_bot",
					Permissions: []rbac.Permission{rbac.MustParsePermission("system:manage")},
					Priority:    5,
					IsActive:    true,
				})
				ev := rbac.NewEvaluator(rbac.MustNewRegistry(defs), cache, logger, rbac.WithAuditRecorder(audit))

				result := ev.CheckPermission(newSubject("platform_bot"), rbac.MustParsePermission("audit:delete"), accessCtx)
				Expect(result.Granted).To(BeTrue())
				Expect(result.Reason).To(Equal(rbac.ReasonSuperAdmin))
			})

			It("should respect a custom priority threshold", func() {
				ev := rbac.NewEvaluator(registry, cache, logger,
					rbac.WithAuditRecorder(audit),
					rbac.WithSuperAdminPriority(80),
				)
				result := ev.CheckPermission(newSubject("org_admin"), rbac.MustParsePermission("cost:delete"), accessCtx)
				Expect(result.Granted).To(BeTrue())
				Expect(result.Reason).To(Equal(rbac.ReasonSuperAdmin))
			})
		})

		Context("caching", func() {
			It("should serve the second identical check from cache", func() {
				perm := rbac.MustParsePermission("alert:read")

				first := evaluator.CheckPermission(newSubject("viewer"), perm, accessCtx)
				Expect(first.Cached).To(BeFalse())

				second := evaluator.CheckPermission(newSubject("viewer"), perm, accessCtx)
				Expect(second.Cached).To(BeTrue())
				Expect(second.Granted).To(Equal(first.Granted))

				stats := cache.Stats()
				Expect(stats.Hits).To(Equal(uint64(1)))
				Expect(stats.Misses).To(Equal(uint64(1)))
			})

			It("should cache denies as well as grants", func() {
				perm := rbac.MustParsePermission("security:manage")
				evaluator.CheckPermission(newSubject("viewer"), perm, accessCtx)

				second := evaluator.CheckPermission(newSubject("viewer"), perm, accessCtx)
				Expect(second.Cached).To(BeTrue())
				Expect(second.Granted).To(BeFalse())
			})
		})

		Context("audit trail", func() {
			It("should record a cache miss but not a cache hit", func() {
				perm := rbac.MustParsePermission("alert:read")
				evaluator.CheckPermission(newSubject("viewer"), perm, accessCtx)
				evaluator.CheckPermission(newSubject("viewer"), perm, accessCtx)

				Expect(audit.entries).To(HaveLen(1))
				Expect(audit.entries[0].Permission).To(Equal("alert:read"))
				Expect(audit.entries[0].Granted).To(BeTrue())
				Expect(audit.entries[0].IPAddress).To(Equal("10.0.0.1"))
			})
		})

		Context("fail closed", func() {
			It("should turn internal panics into a deny", func() {
				// A nil cache makes the lookup panic after the bypass
				// checks; the evaluator must recover into a deny.
				broken := rbac.NewEvaluator(registry, nil, logger, rbac.WithAuditRecorder(audit))

				result := broken.CheckPermission(newSubject("viewer"), rbac.MustParsePermission("alert:read"), accessCtx)
				Expect(result.Granted).To(BeFalse())
				Expect(result.Reason).To(Equal(rbac.ReasonEvaluationError))
			})
		})
	})

	Describe("CheckMultiplePermissions", func() {
		readAndManage := []rbac.Permission{
			rbac.MustParsePermission("alert:read"),
			rbac.MustParsePermission("alert:manage"),
		}

		It("should grant ALL when every permission is held", func() {
			result := evaluator.CheckMultiplePermissions(newSubject("operator"), readAndManage, accessCtx, true)
			Expect(result.Granted).To(BeTrue())
			Expect(result.PermissionsChecked).To(Equal([]string{"alert:read", "alert:manage"}))
		})

		It("should deny ALL naming the one missing permission", func() {
			result := evaluator.CheckMultiplePermissions(newSubject("viewer"), readAndManage, accessCtx, true)
			Expect(result.Granted).To(BeFalse())
			Expect(result.Reason).To(ContainSubstring("not all required permissions"))
			Expect(result.Reason).To(ContainSubstring("alert:manage"))
			Expect(result.Reason).NotTo(ContainSubstring("alert:read"))
		})

		It("should deny ALL naming every missing permission", func() {
			perms := []rbac.Permission{
				rbac.MustParsePermission("security:manage"),
				rbac.MustParsePermission("cost:delete"),
			}
			result := evaluator.CheckMultiplePermissions(newSubject("viewer"), perms, accessCtx, true)
			Expect(result.Granted).To(BeFalse())
			Expect(result.Reason).To(ContainSubstring("security:manage"))
			Expect(result.Reason).To(ContainSubstring("cost:delete"))
		})

		It("should evaluate every permission for ALL so each decision is cached", func() {
			perms := []rbac.Permission{
				rbac.MustParsePermission("security:manage"),
				rbac.MustParsePermission("cost:delete"),
			}
			evaluator.CheckMultiplePermissions(newSubject("viewer"), perms, accessCtx, true)

			stats := cache.Stats()
			Expect(stats.Misses).To(Equal(uint64(2)))
			Expect(stats.Entries).To(Equal(2))
		})

		It("should grant ANY when at least one permission is held", func() {
			result := evaluator.CheckMultiplePermissions(newSubject("viewer"), readAndManage, accessCtx, false)
			Expect(result.Granted).To(BeTrue())
		})

		It("should report every permission checked even for ANY", func() {
			result := evaluator.CheckMultiplePermissions(newSubject("viewer"), readAndManage, accessCtx, false)
			Expect(result.PermissionsChecked).To(Equal([]string{"alert:read", "alert:manage"}))
		})

		It("should deny ANY when nothing is held", func() {
			perms := []rbac.Permission{
				rbac.MustParsePermission("security:manage"),
				rbac.MustParsePermission("cost:delete"),
			}
			result := evaluator.CheckMultiplePermissions(newSubject("viewer"), perms, accessCtx, false)
			Expect(result.Granted).To(BeFalse())
			Expect(result.Reason).To(Equal(rbac.ReasonAnyRequired))
		})

		It("should grant an empty permission list", func() {
			result := evaluator.CheckMultiplePermissions(newSubject("viewer"), nil, accessCtx, true)
			Expect(result.Granted).To(BeTrue())
		})
	})

	Describe("EffectivePermissions", func() {
		It("should union role permissions and user grants without duplicates", func() {
			subject := newSubject("viewer")
			subject.ExtraPermissions = []string{"alert:read", "cost:read", "bogus"}

			perms := evaluator.EffectivePermissions(subject)
			Expect(perms).To(ContainElement(rbac.MustParsePermission("cost:read")))

			seen := map[string]int{}
			for _, p := range perms {
				seen[p.String()]++
			}
			Expect(seen["alert:read"]).To(Equal(1))
		})
	})
})
