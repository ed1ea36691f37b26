package services

import (
	"fmt"

	"vehicle-tracker/internal/models"

	"github.com/xuri/excelize/v2"
)

const tripReportSheet = "Trip Report"

// BuildTripReport формирует Excel-файл с отчетом по рейсам автомобиля за период.
// Ожидает завершенные рейсы с предзагруженными заявками (и водителями заявок).
func BuildTripReport(vehicle *models.Vehicle, trips []models.Trip, dateFrom, dateTo string) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", tripReportSheet)

	// Заголовок отчета
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}
	if err := f.MergeCell(tripReportSheet, "A1", "J1"); err != nil {
		return nil, err
	}
	f.SetCellValue(tripReportSheet, "A1",
		fmt.Sprintf("Trip Report – %s (%s %s)", vehicle.RegistrationNumber, vehicle.Make, vehicle.Model))
	f.SetCellStyle(tripReportSheet, "A1", "A1", titleStyle)

	periodStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Size: 11}})
	if err != nil {
		return nil, err
	}
	if err := f.MergeCell(tripReportSheet, "A2", "J2"); err != nil {
		return nil, err
	}
	f.SetCellValue(tripReportSheet, "A2", fmt.Sprintf("Period: %s to %s", dateFrom, dateTo))
	f.SetCellStyle(tripReportSheet, "A2", "A2", periodStyle)

	// Шапка таблицы
	headers := []string{
		"Trip #", "Booking #", "Requester", "Driver", "Route",
		"Start", "End", "Distance (km)", "Fuel (L)", "Fuel Cost",
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 4)
		f.SetCellValue(tripReportSheet, cell, h)
		f.SetCellStyle(tripReportSheet, cell, cell, headerStyle)
	}

	// Данные
	var totalDistance int
	var totalFuel, totalCost float64
	for i, t := range trips {
		row := i + 5

		driverName := "–"
		requesterName := ""
		route := ""
		var bookingID uint
		if t.Booking != nil {
			bookingID = t.Booking.ID
			requesterName = t.Booking.RequesterName
			route = fmt.Sprintf("%s → %s", t.Booking.RouteFrom, t.Booking.RouteTo)
			if t.Booking.Driver != nil {
				driverName = t.Booking.Driver.FullName
			}
		}

		f.SetCellValue(tripReportSheet, fmt.Sprintf("A%d", row), t.ID)
		f.SetCellValue(tripReportSheet, fmt.Sprintf("B%d", row), bookingID)
		f.SetCellValue(tripReportSheet, fmt.Sprintf("C%d", row), requesterName)
		f.SetCellValue(tripReportSheet, fmt.Sprintf("D%d", row), driverName)
		f.SetCellValue(tripReportSheet, fmt.Sprintf("E%d", row), route)
		if t.StartActual != nil {
			f.SetCellValue(tripReportSheet, fmt.Sprintf("F%d", row), t.StartActual.Format("02 Jan 2006 15:04"))
		}
		if t.EndActual != nil {
			f.SetCellValue(tripReportSheet, fmt.Sprintf("G%d", row), t.EndActual.Format("02 Jan 2006 15:04"))
		}
		if t.Distance != nil {
			f.SetCellValue(tripReportSheet, fmt.Sprintf("H%d", row), *t.Distance)
			totalDistance += *t.Distance
		}
		if t.FuelUsed != nil {
			f.SetCellValue(tripReportSheet, fmt.Sprintf("I%d", row), *t.FuelUsed)
			totalFuel += *t.FuelUsed
		}
		if t.FuelCost != nil {
			f.SetCellValue(tripReportSheet, fmt.Sprintf("J%d", row), *t.FuelCost)
			totalCost += *t.FuelCost
		}
	}

	// Итоговая строка
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	totalRow := len(trips) + 5
	f.SetCellValue(tripReportSheet, fmt.Sprintf("G%d", totalRow), "TOTAL")
	f.SetCellValue(tripReportSheet, fmt.Sprintf("H%d", totalRow), totalDistance)
	f.SetCellValue(tripReportSheet, fmt.Sprintf("I%d", totalRow), totalFuel)
	f.SetCellValue(tripReportSheet, fmt.Sprintf("J%d", totalRow), totalCost)
	f.SetCellStyle(tripReportSheet,
		fmt.Sprintf("G%d", totalRow), fmt.Sprintf("J%d", totalRow), boldStyle)

	// Ширина колонок
	f.SetColWidth(tripReportSheet, "A", "B", 10)
	f.SetColWidth(tripReportSheet, "C", "E", 28)
	f.SetColWidth(tripReportSheet, "F", "G", 18)
	f.SetColWidth(tripReportSheet, "H", "J", 14)

	return f, nil
}
