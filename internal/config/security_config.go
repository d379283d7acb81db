// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityUser                        // Any authenticated user
	SecurityAdmin                       // Authenticated user with admin privileges
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	"Health": SecurityPublic,

	// Membership - user
	"CheckMembership":      SecurityUser,
	"SubmitRequest":        SecurityUser,
	"ListMyRequests":       SecurityUser,
	"GetRequest":           SecurityUser,
	"RefreshRequestStatus": SecurityUser,

	// Membership - admin
	"AdminListRequests": SecurityAdmin,
	"AdminReviewAction": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a route. Unknown routes require admin.
func GetSecurityLevel(route string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[route]; ok {
		return level
	}
	return SecurityAdmin
}
