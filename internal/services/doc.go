// package services contains clients for the scraper server's REST API and
// its push channel. HistoryService and TMDBService are typed endpoint
// clients; APIService performs raw passthrough requests; PushClient owns
// the websocket connection and its subscriber registry.
package services
