package sumodb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/jr0senblum/honbasho/internal/domain/rikishi"
)

const dayResultsHTML = `<html><body>
<table class="tk_table">
<tr><td colspan="5">Day 1</td></tr>
<tr>
  <td><img src="img/hoshi_shiro.gif"></td>
  <td><a href="Rikishi.aspx?r=1">Onosato</a><br>
      <a href="Rikishi_basho.aspx?r=1">1-0 (5-10)</a></td>
  <td>yorikiri<br>12.3</td>
  <td><a href="Rikishi.aspx?r=2">Hoshoryu</a><br>
      <a href="Rikishi_basho.aspx?r=2">0-1</a></td>
  <td><img src="img/hoshi_kuro.gif"></td>
</tr>
<tr>
  <td><img src="img/hoshi_kuro.gif"></td>
  <td><a href="Rikishi.aspx?r=3">Kirishima</a><br>
      <a href="Rikishi_basho.aspx?r=3">0-1</a></td>
  <td>oshidashi</td>
  <td><a href="Rikishi.aspx?r=4">Daieisho</a><br>
      <a href="Rikishi_basho.aspx?r=4">1-0</a></td>
  <td><img src="img/hoshi_shiro.gif"></td>
</tr>
<tr>
  <td><img src="img/hoshi_fusensho.gif"></td>
  <td><a href="Rikishi.aspx?r=5">Takayasu</a><br>
      <a href="Rikishi_basho.aspx?r=5">1-0</a></td>
  <td>tsukiotoshi</td>
  <td><a href="Rikishi.aspx?r=6">Wakamotoharu</a><br>
      <a href="Rikishi_basho.aspx?r=6">0-1 (0-1-0)</a></td>
  <td><img src="img/hoshi_fusenpai.gif"></td>
</tr>
<tr>
  <td><img src="img/hoshi_kuro.gif"></td>
  <td><a href="Rikishi.aspx?r=7">Midorifuji</a></td>
  <td></td>
  <td><a href="Rikishi.aspx?r=8">Nishikigi</a></td>
  <td><img src="img/hoshi_kuro.gif"></td>
</tr>
</table>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		BaseURL:        server.URL,
		RequestsPerSec: 1000,
	})
}

func TestFetchDayResults(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "202507", r.URL.Query().Get("b"))
		require.Equal(t, "3", r.URL.Query().Get("d"))
		_, _ = w.Write([]byte(dayResultsHTML))
	})

	bouts, err := client.FetchDayResults(context.Background(), 2025, 7, 3)
	require.NoError(t, err)
	require.Len(t, bouts, 3)

	require.Equal(t, Bout{
		WinnerName:   "Onosato",
		WinnerRecord: "1-0",
		LoserName:    "Hoshoryu",
		LoserRecord:  "0-1",
		Technique:    "yorikiri",
	}, bouts[0])

	// Winner on the right side of the row.
	require.Equal(t, "Daieisho", bouts[1].WinnerName)
	require.Equal(t, "Kirishima", bouts[1].LoserName)
	require.Equal(t, "oshidashi", bouts[1].Technique)

	// Forfeit overrides any technique text, record parenthetical dropped.
	require.Equal(t, "Takayasu", bouts[2].WinnerName)
	require.Equal(t, TechniqueFusen, bouts[2].Technique)
	require.Equal(t, "0-1", bouts[2].LoserRecord)
}

func TestFetchDayResults_MissingTableIsFatal(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>no results yet</p></body></html>"))
	})

	_, err := client.FetchDayResults(context.Background(), 2025, 7, 9)
	require.ErrorIs(t, err, ErrResultsUnavailable)
}

func TestFetchDayResults_NonRetryableStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchDayResults(context.Background(), 2025, 7, 1)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrResultsUnavailable))
}

const banzukeHTML = `<html><body>
<table class="banzuke"><caption>Juryo Banzuke</caption><tbody>
<tr><td><a href="Rikishi.aspx?r=90">Wrongdivision</a></td><td class="short_rank">J1</td><td></td></tr>
</tbody></table>
<table class="banzuke"><caption>Makuuchi Banzuke</caption><tbody>
<tr>
  <td><a href="Rikishi.aspx?r=1">Onosato</a> <a href="Rikishi_basho.aspx?r=1">12-3</a></td>
  <td class="short_rank">Y</td>
  <td><a href="Rikishi.aspx?r=2">Hoshoryu</a> <a href="Rikishi_basho.aspx?r=2">10-5</a></td>
</tr>
<tr>
  <td><a href="Rikishi.aspx?r=3">Kotozakura</a></td>
  <td class="short_rank">O</td>
  <td></td>
</tr>
<tr>
  <td><a href="Rikishi.aspx?r=4">Tamawashi</a></td>
  <td class="short_rank">M14</td>
  <td><a href="Rikishi.aspx?r=5">Endo</a></td>
</tr>
</tbody></table>
</body></html>`

func TestFetchBanzuke(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(banzukeHTML))
	})

	slots, err := client.FetchBanzuke(context.Background(), 2025, 7)
	require.NoError(t, err)
	require.Equal(t, []rikishi.BanzukeSlot{
		{RingName: "Onosato", RankNo: 1, Side: rikishi.SideEast},
		{RingName: "Hoshoryu", RankNo: 1, Side: rikishi.SideWest},
		{RingName: "Kotozakura", RankNo: 2, Side: rikishi.SideEast},
		{RingName: "Tamawashi", RankNo: 18, Side: rikishi.SideEast},
		{RingName: "Endo", RankNo: 18, Side: rikishi.SideWest},
	}, slots)
}

func TestFetchBanzuke_NotPublished(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body></body></html>"))
	})

	slots, err := client.FetchBanzuke(context.Background(), 2026, 1)
	require.NoError(t, err)
	require.Empty(t, slots)
}

const sanshoHTML = `<html><body>
<table>
<tr><th>Basho</th><th>Gino-sho</th><th>Shukun-sho</th><th>Kanto-sho</th></tr>
<tr><td>2025.05</td><td><a href="#">M2w Other</a></td><td></td><td></td></tr>
<tr>
  <td>2025.07</td>
  <td><a href="#">M14e Kusano</a></td>
  <td>not awarded</td>
  <td><a href="#">M6w Aonishiki</a><a href="#">M11e Kotoshoho</a></td>
</tr>
</table>
</body></html>`

func TestFetchSanshoWinners(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sanshoHTML))
	})

	awards, err := client.FetchSanshoWinners(context.Background(), 2025, 7)
	require.NoError(t, err)
	require.Equal(t, []SanshoAward{
		{Prize: "Gino-sho", RingName: "Kusano"},
		{Prize: "Kanto-sho", RingName: "Aonishiki"},
		{Prize: "Kanto-sho", RingName: "Kotoshoho"},
	}, awards)
}

func TestFetchSanshoWinners_MissingBasho(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sanshoHTML))
	})

	_, err := client.FetchSanshoWinners(context.Background(), 2024, 1)
	require.ErrorIs(t, err, ErrResultsUnavailable)
}

const yushoHTML = `<html><body><pre>
Makuuchi
  Y1e   Onosato (13-2)      Y1w   Hoshoryu (10-5)
  O1e   Kotozakura (8-7)    M2w   Aonishiki (11-4)
Juryo
  J1e   Shonannoumi (14-1)
</pre></body></html>`

func TestFetchYushoWinner(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(yushoHTML))
	})

	winner, err := client.FetchYushoWinner(context.Background(), 2025, 7)
	require.NoError(t, err)
	require.Equal(t, "Onosato", winner)
}

func TestClientRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(dayResultsHTML))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:        server.URL,
		MaxRetries:     2,
		RequestsPerSec: 1000,
	})

	bouts, err := client.FetchDayResults(context.Background(), 2025, 7, 1)
	require.NoError(t, err)
	require.Len(t, bouts, 3)
	require.Equal(t, 2, attempts)
}
