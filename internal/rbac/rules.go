package rbac

// Role names.
const (
	RoleAdmin   = "admin"
	RoleLearner = "learner"
)

// Default policy. Learners take tests and read their own results; admins
// author sets and see everything.
var RolePermissions = map[string][]string{
	RoleLearner: {
		"topic:view",
		"test:take",
		"result:view-own",
	},
	RoleAdmin: {
		"*", // everything
	},
}
