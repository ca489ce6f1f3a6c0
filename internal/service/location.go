package service

import (
	"context"
	"errors"
	"time"

	"ulascansenturk/weather-glasses/internal/session"
	"ulascansenturk/weather-glasses/internal/weather"
)

var ErrLocationTimeout = errors.New("location update timed out")

// awaitLocation takes exactly one update from the session's location stream. The subscription is
// released on every return path.
func awaitLocation(ctx context.Context, sess session.Session, timeout time.Duration) (weather.Coordinates, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	updates := make(chan session.LocationUpdate, 1)
	unsubscribe := sess.SubscribeLocation(session.AccuracyBalanced, func(u session.LocationUpdate) {
		select {
		case updates <- u:
		default:
		}
	})
	if unsubscribe != nil {
		defer unsubscribe()
	}

	select {
	case u := <-updates:
		return weather.Coordinates{Latitude: u.Lat, Longitude: u.Lng}, nil
	case <-waitCtx.Done():
		if err := ctx.Err(); err != nil {
			return weather.Coordinates{}, err
		}
		return weather.Coordinates{}, ErrLocationTimeout
	}
}
