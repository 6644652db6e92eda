package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/roam/internal/models"
	"github.com/joshua-takyi/roam/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client

	UserService         *services.UserService
	ExperienceService   *services.ExperienceService
	AvailabilityService *services.AvailabilityService
	BookingService      *services.BookingService
	MessageService      *services.MessageService
	SavedService        *services.SavedService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cloudinary *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	supaUrl, supaKey string,
) *Container {
	supa := models.SupabaseNewRepo(supabaseClient, supaUrl, supaKey)
	mongoRepo := models.MongodbNewRepo(mongoDBClient)

	userService := services.NewUserService(supa)
	experienceService := services.NewExperienceService(mongoRepo, mongoRepo)
	availabilityService := services.NewAvailabilityService(mongoRepo, mongoRepo)
	bookingService := services.NewBookingService(mongoRepo, mongoRepo)
	messageService := services.NewMessageService(mongoRepo, mongoRepo)
	savedService := services.NewSavedService(mongoRepo)

	return &Container{
		Logger:              logger,
		Cloudinary:          cloudinary,
		SupabaseClient:      supabaseClient,
		MongoDBClient:       mongoDBClient,
		UserService:         userService,
		ExperienceService:   experienceService,
		AvailabilityService: availabilityService,
		BookingService:      bookingService,
		MessageService:      messageService,
		SavedService:        savedService,
	}
}
