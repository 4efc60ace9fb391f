// Package docs OrgHub API documentation
package docs

// Swagger documentation info
// @title OrgHub API
// @version 1.0
// @description Central API documentation - Organization membership and notifications
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@orghub.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8001
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// Membership Service Endpoints
// @tag.name organizations
// @tag.description Organization management
// @tag.name members
// @tag.description Members, roles and ownership transfer
// @tag.name invitations
// @tag.description Email invitations

// Notification Service Endpoints
// @tag.name notifications
// @tag.description In-app notifications and membership events
// @tag.name email
// @tag.description Outbound email
// @tag.name websocket
// @tag.description Real-time event delivery
