package services

import (
	"testing"
	"time"

	"vehicle-tracker/internal/models"
)

func TestBuildTripReport(t *testing.T) {
	vehicle := &models.Vehicle{
		RegistrationNumber: "KAA 700A",
		Make:               "Toyota",
		Model:              "Hilux",
	}

	start := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	odoStart, odoEnd := 1000, 1120
	distance := 120
	fuel := 14.5
	cost := 2400.0

	driver := &models.User{FullName: "Петр Водителев"}
	booking := &models.Booking{
		RequesterName: "Иван Петров",
		RouteFrom:     "Офис",
		RouteTo:       "Склад",
		Driver:        driver,
	}
	booking.ID = 7

	trips := []models.Trip{
		{
			ID: 1, BookingID: 7, Booking: booking,
			StartActual: &start, EndActual: &end,
			OdometerStart: &odoStart, OdometerEnd: &odoEnd,
			Distance: &distance, FuelUsed: &fuel, FuelCost: &cost,
		},
	}

	f, err := BuildTripReport(vehicle, trips, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("BuildTripReport: %v", err)
	}
	defer f.Close()

	title, err := f.GetCellValue(tripReportSheet, "A1")
	if err != nil {
		t.Fatalf("чтение заголовка: %v", err)
	}
	if title != "Trip Report – KAA 700A (Toyota Hilux)" {
		t.Fatalf("неверный заголовок отчета: %q", title)
	}

	period, _ := f.GetCellValue(tripReportSheet, "A2")
	if period != "Period: 2026-08-01 to 2026-08-31" {
		t.Fatalf("неверный период: %q", period)
	}

	header, _ := f.GetCellValue(tripReportSheet, "A4")
	if header != "Trip #" {
		t.Fatalf("неверная шапка таблицы: %q", header)
	}

	requester, _ := f.GetCellValue(tripReportSheet, "C5")
	if requester != "Иван Петров" {
		t.Fatalf("неверный заявитель: %q", requester)
	}
	driverCell, _ := f.GetCellValue(tripReportSheet, "D5")
	if driverCell != "Петр Водителев" {
		t.Fatalf("неверный водитель: %q", driverCell)
	}
	route, _ := f.GetCellValue(tripReportSheet, "E5")
	if route != "Офис → Склад" {
		t.Fatalf("неверный маршрут: %q", route)
	}
	dist, _ := f.GetCellValue(tripReportSheet, "H5")
	if dist != "120" {
		t.Fatalf("неверный пробег: %q", dist)
	}

	totalLabel, _ := f.GetCellValue(tripReportSheet, "G6")
	if totalLabel != "TOTAL" {
		t.Fatalf("ожидалась итоговая строка, получено %q", totalLabel)
	}
	totalDist, _ := f.GetCellValue(tripReportSheet, "H6")
	if totalDist != "120" {
		t.Fatalf("неверный итоговый пробег: %q", totalDist)
	}
}

func TestBuildTripReportWithoutDriver(t *testing.T) {
	vehicle := &models.Vehicle{RegistrationNumber: "KAA 701B", Make: "Toyota", Model: "Prado"}
	booking := &models.Booking{RequesterName: "Иван", RouteFrom: "A", RouteTo: "B"}
	booking.ID = 1

	trips := []models.Trip{{ID: 1, BookingID: 1, Booking: booking}}

	f, err := BuildTripReport(vehicle, trips, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("BuildTripReport: %v", err)
	}
	defer f.Close()

	driverCell, _ := f.GetCellValue(tripReportSheet, "D5")
	if driverCell != "–" {
		t.Fatalf("без водителя должен выводиться прочерк, получено %q", driverCell)
	}
}
