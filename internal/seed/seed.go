package seed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cargochainlabs/cargochain-backend/pkg/config"
	"github.com/cargochainlabs/cargochain-backend/pkg/db"
	"github.com/cargochainlabs/cargochain-backend/pkg/db/models"
	"github.com/cargochainlabs/cargochain-backend/pkg/enums"
	"github.com/cargochainlabs/cargochain-backend/pkg/logger"
	"github.com/cargochainlabs/cargochain-backend/pkg/security"
)

// Run loads the demo fixture: three accounts, three listings, and a
// fully settled booking with tracking history. It is a no-op when any
// user already exists, so restarts do not duplicate data.
func Run(ctx context.Context, dbClient *db.Client, cfg config.PasswordConfig, logg *logger.Logger) error {
	var count int64
	if err := dbClient.DB().WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		if logg != nil {
			logg.Info(ctx, "seed skipped, users already present")
		}
		return nil
	}

	hash, err := security.HashPassword("demo1234", cfg)
	if err != nil {
		return err
	}

	return dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		users := []models.User{
			{Username: "demo_shipper", Email: "shipper@cargochain.local", PasswordHash: hash, Role: enums.UserRoleUser},
			{Username: "demo_carrier", Email: "carrier@cargochain.local", PasswordHash: hash, Role: enums.UserRoleLogistics},
			{Username: "demo_developer", Email: "developer@cargochain.local", PasswordHash: hash, Role: enums.UserRoleDeveloper},
		}
		for i := range users {
			if err := tx.Create(&users[i]).Error; err != nil {
				return err
			}
		}
		shipper, carrier := users[0], users[1]

		departure := time.Now().AddDate(0, 0, 14).Truncate(24 * time.Hour)
		spaces := []models.LogisticsSpace{
			{
				UserID: carrier.ID, TokenID: "T-0x8F3E7B4A",
				Source: "New York", Destination: "Chicago",
				Length: 6, Width: 2.4, Height: 2.6, MaxWeight: 2000,
				VehicleType: "truck", Status: enums.SpaceStatusBooked,
				DepartureDate: departure, Price: decimal.NewFromFloat(3.25),
			},
			{
				UserID: carrier.ID, TokenID: "T-0x7A2D9C1F",
				Source: "Los Angeles", Destination: "Phoenix",
				Length: 12, Width: 2.4, Height: 2.9, MaxWeight: 8000,
				VehicleType: "semi", Status: enums.SpaceStatusAvailable,
				DepartureDate: departure.AddDate(0, 0, 3), Price: decimal.NewFromFloat(2.10),
			},
			{
				UserID: carrier.ID, TokenID: "T-0x3F1A6E5D",
				Source: "Seattle", Destination: "Portland",
				Length: 4, Width: 2, Height: 2.2, MaxWeight: 1200,
				VehicleType: "van", Status: enums.SpaceStatusAvailable,
				DepartureDate: departure.AddDate(0, 0, 5), Price: decimal.NewFromFloat(4.75),
			},
		}
		for i := range spaces {
			if err := tx.Create(&spaces[i]).Error; err != nil {
				return err
			}
		}

		services, err := json.Marshal([]string{"insurance", "priority_handling"})
		if err != nil {
			return err
		}
		shipment := models.Shipment{
			LogisticsSpaceID:   spaces[0].ID,
			UserID:             shipper.ID,
			GoodsType:          "Electronics",
			Weight:             750,
			Length:             2,
			Width:              1.5,
			Height:             1.2,
			Status:             enums.ShipmentStatusInTransit,
			AdditionalServices: services,
		}
		if err := tx.Create(&shipment).Error; err != nil {
			return err
		}

		chainHash := "0x4a7d9e2b8c1f6a3d"
		txn := models.Transaction{
			ShipmentID:       shipment.ID,
			UserID:           shipper.ID,
			Amount:           decimal.NewFromFloat(1380.50),
			Currency:         "USD",
			PaymentMethod:    enums.PaymentMethodMetamask,
			Status:           enums.TransactionStatusCompleted,
			BlockchainTxHash: &chainHash,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Shipment{}).
			Where("id = ?", shipment.ID).
			Update("transaction_id", txn.ID).Error; err != nil {
			return err
		}

		paymentDetails, err := json.Marshal(map[string]string{"blockchain_tx_hash": chainHash})
		if err != nil {
			return err
		}
		start := time.Now().Add(-48 * time.Hour)
		events := []models.TrackingEvent{
			{ShipmentID: shipment.ID, EventType: "created", Location: "New York", Latitude: 40.71, Longitude: -74.00, Status: "pending", Message: "Shipment registered", Timestamp: start},
			{ShipmentID: shipment.ID, EventType: "payment", Location: "New York", Latitude: 40.71, Longitude: -74.00, Status: "confirmed", Message: "Payment confirmed via blockchain", Details: paymentDetails, Timestamp: start.Add(30 * time.Minute)},
			{ShipmentID: shipment.ID, EventType: "pickup", Location: "New York", Latitude: 40.71, Longitude: -74.00, Status: "in_transit", Message: "Cargo picked up", Timestamp: start.Add(4 * time.Hour)},
			{ShipmentID: shipment.ID, EventType: "checkpoint", Location: "Newark", Latitude: 40.73, Longitude: -74.17, Status: "in_transit", Message: "Departed Newark hub", Timestamp: start.Add(6 * time.Hour)},
			{ShipmentID: shipment.ID, EventType: "checkpoint", Location: "Cleveland", Latitude: 41.49, Longitude: -81.69, Status: "in_transit", Message: "Passed Cleveland hub", Timestamp: start.Add(20 * time.Hour)},
			{ShipmentID: shipment.ID, EventType: "checkpoint", Location: "Toledo", Latitude: 41.65, Longitude: -83.53, Status: "in_transit", Message: "Passed Toledo hub", Timestamp: start.Add(26 * time.Hour)},
		}
		for i := range events {
			if err := tx.Create(&events[i]).Error; err != nil {
				return err
			}
		}

		if logg != nil {
			logg.Info(ctx, "demo data seeded")
		}
		return nil
	})
}
