package services

import (
	"roundpro-backend/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNextAnchorRecurringRollsForward(t *testing.T) {
	plan := &models.ServicePlan{
		ScheduleType:   models.ScheduleTypeRecurring,
		FrequencyWeeks: intPtr(2),
		StartDate:      timePtr(date(2024, 1, 1)),
	}

	// Stepping by 14 days from Jan 1: Jan 1, 15, 29
	anchor := ResolveNextAnchor(plan, date(2024, 1, 20))
	require.NotNil(t, anchor)
	assert.Equal(t, date(2024, 1, 29), *anchor)
}

func TestResolveNextAnchorFutureStartUnchanged(t *testing.T) {
	plan := &models.ServicePlan{
		ScheduleType:   models.ScheduleTypeRecurring,
		FrequencyWeeks: intPtr(4),
		StartDate:      timePtr(date(2024, 3, 1)),
	}

	anchor := ResolveNextAnchor(plan, date(2024, 1, 20))
	require.NotNil(t, anchor)
	assert.Equal(t, date(2024, 3, 1), *anchor)
}

func TestResolveNextAnchorStartOnToday(t *testing.T) {
	plan := &models.ServicePlan{
		ScheduleType:   models.ScheduleTypeRecurring,
		FrequencyWeeks: intPtr(1),
		StartDate:      timePtr(date(2024, 1, 20)),
	}

	anchor := ResolveNextAnchor(plan, date(2024, 1, 20))
	require.NotNil(t, anchor)
	assert.Equal(t, date(2024, 1, 20), *anchor)
}

func TestResolveNextAnchorOneOffVerbatim(t *testing.T) {
	plan := &models.ServicePlan{
		ScheduleType:  models.ScheduleTypeOneOff,
		ScheduledDate: timePtr(date(2023, 6, 1)),
	}

	// A one-off in the past is not rolled forward
	anchor := ResolveNextAnchor(plan, date(2024, 1, 20))
	require.NotNil(t, anchor)
	assert.Equal(t, date(2023, 6, 1), *anchor)
}

func TestResolveNextAnchorMalformedPlans(t *testing.T) {
	today := date(2024, 1, 20)

	assert.Nil(t, ResolveNextAnchor(&models.ServicePlan{
		ScheduleType: models.ScheduleTypeOneOff,
	}, today))

	assert.Nil(t, ResolveNextAnchor(&models.ServicePlan{
		ScheduleType: models.ScheduleTypeRecurring,
		StartDate:    timePtr(date(2024, 1, 1)),
	}, today))

	assert.Nil(t, ResolveNextAnchor(&models.ServicePlan{
		ScheduleType:   models.ScheduleTypeRecurring,
		FrequencyWeeks: intPtr(4),
	}, today))

	assert.Nil(t, ResolveNextAnchor(&models.ServicePlan{
		ScheduleType:   models.ScheduleTypeRecurring,
		FrequencyWeeks: intPtr(0),
		StartDate:      timePtr(date(2024, 1, 1)),
	}, today))
}

func TestDeactivateIfExpired(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db, nil)
	plan := seedPlan(t, db, client, func(p *models.ServicePlan) {
		p.FrequencyWeeks = intPtr(4)
		p.StartDate = timePtr(date(2023, 1, 2))
		p.LastServiceDate = timePtr(date(2023, 12, 1))
	})

	changed, err := DeactivateIfExpired(db, plan, date(2024, 1, 1))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, plan.IsActive)

	var stored models.ServicePlan
	require.NoError(t, db.First(&stored, "id = ?", plan.ID).Error)
	assert.False(t, stored.IsActive)

	// Second call is a no-op
	changed, err = DeactivateIfExpired(db, plan, date(2024, 1, 1))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestDeactivateIfExpiredLeavesCurrentPlans(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db, nil)
	plan := seedPlan(t, db, client, func(p *models.ServicePlan) {
		p.FrequencyWeeks = intPtr(4)
		p.StartDate = timePtr(date(2024, 1, 1))
		p.LastServiceDate = timePtr(date(2024, 1, 1)) // today, not yet past
	})

	changed, err := DeactivateIfExpired(db, plan, date(2024, 1, 1))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, plan.IsActive)
}

func TestEffectivePlansPrefersRealPlans(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db, func(c *models.Client) {
		// Legacy fields present but superseded by the plan below
		c.FrequencyWeeks = intPtr(8)
		c.NextVisit = timePtr(date(2024, 2, 1))
	})
	seedPlan(t, db, client, func(p *models.ServicePlan) {
		p.FrequencyWeeks = intPtr(4)
		p.StartDate = timePtr(date(2024, 1, 1))
	})

	plans, err := EffectivePlans(db, client, date(2024, 1, 1))
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Window Cleaning", plans[0].ServiceType)
	assert.Equal(t, 4, *plans[0].FrequencyWeeks)
}

func TestEffectivePlansSynthesizesLegacyFields(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db, func(c *models.Client) {
		c.FrequencyWeeks = intPtr(4)
		c.NextVisit = timePtr(date(2024, 2, 1))
		c.Quote = 18
		c.AdditionalServices = models.AdditionalServiceList{
			{ServiceName: "Gutter Clearing", FrequencyWeeks: intPtr(26), NextVisit: timePtr(date(2024, 3, 1)), Price: 40},
		}
	})

	plans, err := EffectivePlans(db, client, date(2024, 1, 1))
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, LegacyServiceName, plans[0].ServiceType)
	assert.Equal(t, models.ScheduleTypeRecurring, plans[0].ScheduleType)
	assert.Equal(t, 18.0, plans[0].Price)

	assert.Equal(t, "Gutter Clearing", plans[1].ServiceType)
	assert.Equal(t, 26, *plans[1].FrequencyWeeks)
}

func TestEffectivePlansLegacyOneOff(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db, func(c *models.Client) {
		// Next visit without a frequency is a legacy one-off
		c.NextVisit = timePtr(date(2024, 2, 1))
	})

	plans, err := EffectivePlans(db, client, date(2024, 1, 1))
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, models.ScheduleTypeOneOff, plans[0].ScheduleType)
	assert.Equal(t, date(2024, 2, 1), *plans[0].ScheduledDate)
}

func TestEffectivePlansDropsExpired(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db, nil)
	seedPlan(t, db, client, func(p *models.ServicePlan) {
		p.FrequencyWeeks = intPtr(4)
		p.StartDate = timePtr(date(2023, 1, 2))
		p.LastServiceDate = timePtr(date(2023, 6, 1))
	})

	plans, err := EffectivePlans(db, client, date(2024, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, plans)

	// And the expiry was persisted
	var stored models.ServicePlan
	require.NoError(t, db.First(&stored, "client_id = ?", client.ID).Error)
	assert.False(t, stored.IsActive)
}
