package main

import (
	"log"
	"time"

	"github.com/google/uuid"

	"orghub-backend/membership-service/store"
	"orghub-backend/shared/config"
	"orghub-backend/shared/database"
	"orghub-backend/shared/database/models"
	utils "orghub-backend/shared/utils/auth"
	"orghub-backend/shared/utils/permission"
)

type seedUser struct {
	id    uuid.UUID
	email string
}

func main() {
	log.Println("🌱 Starting database seeding...")

	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	st := store.NewGormStore(database.GetDB())
	now := time.Now().UTC()

	owner := seedUser{id: uuid.New(), email: "owner@demo.orghub.dev"}
	admin := seedUser{id: uuid.New(), email: "admin@demo.orghub.dev"}
	member := seedUser{id: uuid.New(), email: "member@demo.orghub.dev"}

	org := &models.Organization{
		Name:        "Demo Organization",
		Description: "Seeded organization for local development",
	}
	if err := st.CreateOrganizationWithOwner(org, &models.Membership{
		UserID:    owner.id,
		UserEmail: owner.email,
		Role:      permission.RoleOwner,
		JoinedAt:  now,
	}); err != nil {
		log.Fatalf("Failed to seed organization: %v", err)
	}
	log.Printf("🏢 Organization created: %s (%s)", org.Name, org.ID)

	if err := st.CreateMembership(&models.Membership{
		OrganizationID: org.ID,
		UserID:         admin.id,
		UserEmail:      admin.email,
		Role:           permission.RoleAdmin,
		JoinedAt:       now,
	}); err != nil {
		log.Fatalf("Failed to seed admin membership: %v", err)
	}
	if err := st.CreateMembership(&models.Membership{
		OrganizationID: org.ID,
		UserID:         member.id,
		UserEmail:      member.email,
		Role:           permission.RoleUser,
		JoinedAt:       now,
	}); err != nil {
		log.Fatalf("Failed to seed user membership: %v", err)
	}

	// A pending invitation for testing the accept flow.
	token, err := utils.GenerateInvitationToken()
	if err != nil {
		log.Fatalf("Failed to generate invitation token: %v", err)
	}
	inv := &models.Invitation{
		OrganizationID: org.ID,
		InviterID:      owner.id,
		InviterEmail:   owner.email,
		InviteeEmail:   "invitee@demo.orghub.dev",
		Role:           permission.RoleViewer,
		Status:         models.InvitationStatusPending,
		Token:          token,
		ExpiresAt:      now.Add(models.InvitationTTL),
	}
	if err := st.CreateInvitation(inv); err != nil {
		log.Fatalf("Failed to seed invitation: %v", err)
	}
	log.Printf("✉️ Pending invitation for %s (token: %s)", inv.InviteeEmail, inv.Token)

	// Print ready-to-use bearer tokens for the seeded users.
	for _, u := range []seedUser{owner, admin, member} {
		jwt, err := utils.GenerateJWT(u.id, u.email)
		if err != nil {
			log.Fatalf("Failed to generate JWT for %s: %v", u.email, err)
		}
		log.Printf("🔑 %s: Bearer %s", u.email, jwt)
	}

	log.Println("✅ Database seeding completed successfully!")
}
