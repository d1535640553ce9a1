package anilist

// GraphQL 쿼리 모음. 필드 구성은 명령별 임베드에 필요한 최소 집합이다.
const (
	queryAnimeDetails = `
query ($id: Int!) {
  Media(id: $id, type: ANIME) {
    id
    title { romaji english native }
    status
    format
    episodes
    description(asHtml: true)
    genres
    averageScore
    season
    seasonYear
    nextAiringEpisode { episode airingAt timeUntilAiring }
    coverImage { large }
    siteUrl
  }
}`

	querySearchByID = `
query ($id: Int!) {
  Media(id: $id, type: ANIME) {
    id
    title { romaji english native }
    format
    status
    coverImage { large }
    siteUrl
  }
}`

	querySearchByText = `
query ($q: String!, $page: Int = 1, $perPage: Int = 10) {
  Page(page: $page, perPage: $perPage) {
    media(search: $q, type: ANIME, sort: [SEARCH_MATCH, POPULARITY_DESC]) {
      id
      title { romaji english native }
      format
      status
      coverImage { large }
      siteUrl
    }
    pageInfo { total currentPage lastPage hasNextPage }
  }
}`

	querySeasonalAnime = `
query SeasonAnime($season: MediaSeason, $seasonYear: Int, $type: MediaType, $page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(season: $season, seasonYear: $seasonYear, type: $type, sort: [POPULARITY_DESC]) {
      id
      title { romaji english }
      coverImage { medium large }
      status
      siteUrl
    }
    pageInfo { total currentPage lastPage hasNextPage }
  }
}`

	queryReleasingAnime = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    media(type: ANIME, status: RELEASING, sort: [POPULARITY_DESC]) {
      id
      title { romaji english }
      nextAiringEpisode { episode airingAt }
    }
    pageInfo { total currentPage lastPage hasNextPage }
  }
}`
)
