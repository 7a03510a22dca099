package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Content Types
	ContentTypeJSON = "application/json"

	// Context keys
	ContextKeyActorID   = "actor_id"
	ContextKeyActor     = "actor"
	ContextKeyRequestID = "request_id"

	// Member states
	MemberStateActive   = "active"
	MemberStateAwaiting = "awaiting"
	MemberStateInvited  = "invited"

	// Member admission limits
	MaxAssigneesOrReviewers = 200
	FreeTierSeatLimit       = 5

	// Collection filter literals. These are matched case-sensitively and
	// must never be treated as identifiers.
	FilterNone = "None"
	FilterAny  = "Any"

	// Database table names
	TableMembers               = "members"
	TableResources             = "resources"
	TableProtectedBranches     = "protected_branches"
	TableBranchAccessEntries   = "branch_access_entries"
	TableProtectedEnvironments = "protected_environments"
	TableDeployAccessLevels    = "deploy_access_levels"
	TableEnvApprovalRules      = "environment_approval_rules"
	TableDeploymentApprovals   = "deployment_approvals"
	TableApprovalRules         = "approval_rules"
	TableMergeRequestApprovals = "merge_request_approvals"
	TableStatusChecks          = "external_status_checks"
	TableMergeRequests         = "merge_requests"
	TableDeployments           = "deployments"
	TableMemberRoles           = "member_roles"
	TableAccessTokens          = "personal_access_tokens"
	TableGroupSettings         = "group_settings"
	TableAuditEvents           = "audit_events"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgResourceNotFound    = "404 Not Found"
	ErrMsgUnauthorized        = "401 Unauthorized"
	ErrMsgForbidden           = "403 Forbidden"
)
