package internaldefs

import (
	goPortal "github.com/MrEthical07/goPortal"
)

// CounterDef defines a public type used by goPortal APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goPortal.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the portal engine.
var CounterDefs = []CounterDef{
	{ID: goPortal.MetricActionTicketIssued, Name: "goportal_action_ticket_issued_total", Help: "Issued one-time action tickets."},
	{ID: goPortal.MetricActionTicketConsumed, Name: "goportal_action_ticket_consumed_total", Help: "Successfully consumed action tickets."},
	{ID: goPortal.MetricActionTicketRejected, Name: "goportal_action_ticket_rejected_total", Help: "Action ticket redemptions rejected as invalid or expired."},
	{ID: goPortal.MetricActionTicketReplayed, Name: "goportal_action_ticket_replayed_total", Help: "Detected action ticket replay attempts."},
	{ID: goPortal.MetricSsoTicketIssued, Name: "goportal_sso_ticket_issued_total", Help: "Issued SSO handoff tickets."},
	{ID: goPortal.MetricSsoTicketExchanged, Name: "goportal_sso_ticket_exchanged_total", Help: "Successfully exchanged SSO tickets."},
	{ID: goPortal.MetricSsoTicketRejected, Name: "goportal_sso_ticket_rejected_total", Help: "SSO ticket exchanges rejected for binding mismatch or absence."},
	{ID: goPortal.MetricSsoTicketReplayed, Name: "goportal_sso_ticket_replayed_total", Help: "Detected SSO ticket replay attempts."},
	{ID: goPortal.MetricSsoTicketRateLimited, Name: "goportal_sso_ticket_rate_limited_total", Help: "Rate-limited SSO ticket issuance attempts."},
	{ID: goPortal.MetricPtkIssued, Name: "goportal_ptk_issued_total", Help: "Issued portal tokens."},
	{ID: goPortal.MetricPtkValidated, Name: "goportal_ptk_validated_total", Help: "Successful portal token validations."},
	{ID: goPortal.MetricPtkRejected, Name: "goportal_ptk_rejected_total", Help: "Portal token validations rejected as invalid or stale."},
	{ID: goPortal.MetricPtkScopeMismatch, Name: "goportal_ptk_scope_mismatch_total", Help: "Portal token validations rejected for caller scope mismatch."},
	{ID: goPortal.MetricPtkRenewed, Name: "goportal_ptk_renewed_total", Help: "Renewed portal tokens."},
	{ID: goPortal.MetricPtkInvalidated, Name: "goportal_ptk_invalidated_total", Help: "Explicitly invalidated portal tokens."},
	{ID: goPortal.MetricTokenVersionBumped, Name: "goportal_token_version_bumped_total", Help: "Token version bump operations."},
	{ID: goPortal.MetricPasswordChanged, Name: "goportal_password_changed_total", Help: "Successful password changes."},
	{ID: goPortal.MetricProfileUpdated, Name: "goportal_profile_updated_total", Help: "Successful profile updates."},
	{ID: goPortal.MetricAccountDisabled, Name: "goportal_account_disabled_total", Help: "Account disable operations."},
	{ID: goPortal.MetricAccountEnabled, Name: "goportal_account_enabled_total", Help: "Account enable operations."},
	{ID: goPortal.MetricForceLogout, Name: "goportal_force_logout_total", Help: "Forced logout operations."},
	{ID: goPortal.MetricEventPublished, Name: "goportal_event_published_total", Help: "Portal events appended to the stream."},
	{ID: goPortal.MetricEventPublishFailed, Name: "goportal_event_publish_failed_total", Help: "Portal event publish failures."},
	{ID: goPortal.MetricEventDeduplicated, Name: "goportal_event_deduplicated_total", Help: "Consumer-side event deliveries suppressed by dedup."},
}
