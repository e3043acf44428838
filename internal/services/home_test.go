package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"schoolhub/internal/apperr"
	"schoolhub/internal/db/dbtest"
	"schoolhub/internal/models"
	"schoolhub/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newHomeService(t *testing.T) (*HomeService, *gorm.DB) {
	t.Helper()
	conn := dbtest.New(t)
	return NewHomeService(conn, time.Minute), conn
}

func TestMealsRoundTripAndReplace(t *testing.T) {
	svc, _ := newHomeService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveMeals(ctx, MealTable{
		"2025-03-04": {"중식": {"쌀밥", "미역국", "불고기"}},
	}))
	table, err := svc.Meals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"쌀밥", "미역국", "불고기"}, table["2025-03-04"]["중식"])

	require.NoError(t, svc.SaveMeals(ctx, MealTable{
		"2025-03-04": {"중식": {"카레라이스"}, "석식": {"짜장면"}},
	}))
	table, err = svc.Meals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"카레라이스"}, table["2025-03-04"]["중식"])
	assert.Equal(t, []string{"짜장면"}, table["2025-03-04"]["석식"])
}

func TestMealsServedFromCache(t *testing.T) {
	svc, conn := newHomeService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveMeals(ctx, MealTable{"2025-03-05": {"중식": {"비빔밥"}}}))
	_, err := svc.Meals(ctx)
	require.NoError(t, err)

	// written behind the service's back, so only a cache miss would see it
	require.NoError(t, conn.Create(&models.Meal{Date: "2025-03-06", Type: "중식", Menu: "라면"}).Error)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := svc.Meals(ctx)
			assert.NoError(t, err)
			assert.NotContains(t, table, "2025-03-06")
		}()
	}
	wg.Wait()
}

func TestSaveMealsValidation(t *testing.T) {
	svc, _ := newHomeService(t)
	ctx := context.Background()

	err := svc.SaveMeals(ctx, MealTable{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	err = svc.SaveMeals(ctx, MealTable{"3월 4일": {"중식": {"밥"}}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	err = svc.SaveMeals(ctx, MealTable{"2025-03-04": {" ": {"밥"}}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPlannerIsScopedToOwner(t *testing.T) {
	svc, _ := newHomeService(t)
	ctx := context.Background()

	item, err := svc.AddPlannerItem(ctx, bob.ID, "2025-03-04", "수학 숙제")
	require.NoError(t, err)
	_, err = svc.AddPlannerItem(ctx, bob.ID, "2025-03-05", "영어 단어")
	require.NoError(t, err)
	_, err = svc.AddPlannerItem(ctx, bob.ID, "bad-date", "x")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	items, err := svc.PlannerItems(ctx, bob.ID, "2025-03-04")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "수학 숙제", items[0].Text)
	assert.False(t, items[0].Done)

	err = svc.SetPlannerDone(ctx, carol.ID, item.ID, true)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	require.NoError(t, svc.SetPlannerDone(ctx, bob.ID, item.ID, true))
	require.NoError(t, svc.SetPlannerDone(ctx, bob.ID, item.ID, true))

	items, err = svc.PlannerItems(ctx, bob.ID, "2025-03-04")
	require.NoError(t, err)
	assert.True(t, items[0].Done)

	err = svc.DeletePlannerItem(ctx, carol.ID, item.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	require.NoError(t, svc.DeletePlannerItem(ctx, bob.ID, item.ID))

	items, err = svc.PlannerItems(ctx, bob.ID, "2025-03-04")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGrade(t *testing.T) {
	svc, _ := newHomeService(t)

	res, err := svc.Grade([]utils.GradeSubject{{Name: "국어", Credit: 2, Grade: 1}, {Name: "과학", Credit: 2, Grade: 4}})
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalCredits)
	assert.Equal(t, 2.5, res.WeightedGrade)

	_, err = svc.Grade(nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMealsSurvivesCancelledCaller(t *testing.T) {
	svc, conn := newHomeService(t)
	require.NoError(t, svc.SaveMeals(context.Background(), MealTable{"2025-03-07": {"중식": {"김밥"}}}))

	// hold the only pooled connection so the shared fill has to wait
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	held, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := svc.Meals(ctxA)
		errA <- err
	}()
	time.Sleep(20 * time.Millisecond)

	type result struct {
		table MealTable
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		table, err := svc.Meals(context.Background())
		resB <- result{table, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)
	require.NoError(t, held.Close())

	res := <-resB
	require.NoError(t, res.err)
	assert.Equal(t, []string{"김밥"}, res.table["2025-03-07"]["중식"])
}
