package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/YisakTolla/VolunteerSync-sub001/internal/auth"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/badges"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/events"
	"github.com/YisakTolla/VolunteerSync-sub001/internal/profiles"
	"github.com/YisakTolla/VolunteerSync-sub001/pkg/crypto"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.AutoMigrate(app.db); err != nil {
				return err
			}
			fmt.Println("Schema is up to date.")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo volunteer, a demo organization and one published event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.AutoMigrate(app.db); err != nil {
				return err
			}

			authService := auth.NewService(app.db, auth.NewJWTService(app.cfg.JWT.Secret, app.cfg.JWT.Expiry()))

			accounts := []auth.RegisterInput{
				{
					Email:    "volunteer@example.com",
					Password: password,
					Name:     "Demo Volunteer",
					UserType: models.UserTypeVolunteer,
				},
				{
					Email:            "organization@example.com",
					Password:         password,
					Name:             "Demo Coordinator",
					UserType:         models.UserTypeOrganization,
					OrganizationName: "Demo Community Garden",
					OrganizationType: models.OrgTypeCommunity,
				},
			}

			var orgProfileID uuid.UUID
			for _, in := range accounts {
				resp, err := authService.Register(app.ctx, in)
				if errors.Is(err, auth.ErrUserExists) {
					fmt.Printf("User already exists: %s\n", in.Email)
					continue
				}
				if err != nil {
					return fmt.Errorf("creating %s: %w", in.Email, err)
				}
				fmt.Printf("Created %s %s (profile %s)\n", in.UserType, resp.User.Email, resp.User.Profile.ID)
				if in.UserType == models.UserTypeOrganization {
					orgProfileID = resp.User.Profile.ID
				}
			}

			if orgProfileID == uuid.Nil {
				fmt.Println("Organization already seeded, skipping event.")
				return nil
			}

			start := time.Now().UTC().AddDate(0, 0, 7).Truncate(time.Hour)
			event, err := events.NewService(app.db, app.logger).Create(app.ctx, orgProfileID, events.CreateInput{
				Title:          "Spring Planting Day",
				Description:    "<p>Help us plant the spring beds. Gloves provided.</p>",
				Category:       "Environment",
				Location:       "Portland, OR",
				StartsAt:       start,
				EndsAt:         start.Add(3 * time.Hour),
				MaxVolunteers:  15,
				RequiredSkills: []string{"Gardening"},
				Publish:        true,
			})
			if err != nil {
				return fmt.Errorf("creating event: %w", err)
			}
			fmt.Printf("Created event %q (%s) starting %s\n", event.Title, event.ID, event.StartsAt.Format(time.RFC1123))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "changeme123", "password for the seeded accounts")
	return cmd
}

func verifyOrgCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-org <profile-id>",
		Short: "Mark an organization profile as verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("profile-id must be a UUID: %w", err)
			}

			// Verification never reads sealed fields.
			sealer, err := crypto.NewEncryptor(app.cfg.Encryption.Key)
			if err != nil {
				return err
			}
			svc := profiles.NewService(app.db, sealer, nil, app.logger)

			p, err := svc.VerifyOrganization(app.ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("Verified %s (%s) at %s\n", p.DisplayName, p.ID, p.VerifiedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func recomputeBadgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-badges [profile-id]",
		Short: "Re-evaluate badges for one volunteer, or for every volunteer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []uuid.UUID
			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("profile-id must be a UUID: %w", err)
				}
				ids = append(ids, id)
			} else {
				err := app.db.WithContext(app.ctx).Model(&models.Profile{}).
					Where("kind = ?", models.ProfileKindVolunteer).
					Pluck("id", &ids).Error
				if err != nil {
					return fmt.Errorf("listing volunteers: %w", err)
				}
			}

			svc := badges.NewService(app.db, app.logger)
			total := 0
			for _, id := range ids {
				earned, err := svc.Recompute(app.ctx, id)
				if err != nil {
					return fmt.Errorf("recomputing %s: %w", id, err)
				}
				for _, b := range earned {
					fmt.Printf("  %s earned %s\n", id, b.Key)
				}
				total += len(earned)
			}
			fmt.Printf("\nRecomputed %d profiles, %d badges newly earned.\n", len(ids), total)
			return nil
		},
	}
}

func genKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "gen-key",
		Short:       "Print a new ENCRYPTION_KEY for sealing profile fields",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{offline: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			enc, err := crypto.NewEncryptor(key)
			if err != nil {
				return err
			}
			fmt.Printf("ENCRYPTION_KEY=%s\n", key)
			fmt.Printf("# public key: %s\n", enc.PublicKey())
			return nil
		},
	}
}
