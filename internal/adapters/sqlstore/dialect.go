package sqlstore

// Dialect holds the statements that differ between the database/sql backends.
// Both use "?" placeholders.
type Dialect struct {
	Name string
	// upsertTail follows the multi-row values list of the countries insert.
	upsertTail     string
	ensureMetadata string
	upsertMetadata string
	topByGDP       string
}

var MySQL = Dialect{
	Name: "mysql",
	// row aliases need MySQL 8.0.19+
	upsertTail: ` as new
		on duplicate key update
			capital           = new.capital,
			region            = new.region,
			population        = new.population,
			currency_code     = new.currency_code,
			exchange_rate     = new.exchange_rate,
			estimated_gdp     = new.estimated_gdp,
			flag_url          = new.flag_url,
			last_refreshed_at = new.last_refreshed_at`,
	ensureMetadata: `insert ignore into refresh_metadata (id, total_countries, last_refreshed_at) values (1, 0, null)`,
	upsertMetadata: `
		insert into refresh_metadata (id, total_countries, last_refreshed_at) values (1, ?, ?) as new
		on duplicate key update
			total_countries   = new.total_countries,
			last_refreshed_at = new.last_refreshed_at`,
	topByGDP: `
		select name, estimated_gdp
		from countries
		where estimated_gdp is not null
		order by estimated_gdp desc, name
		limit ?`,
}

var SQLite = Dialect{
	Name: "sqlite",
	upsertTail: `
		on conflict (name) do update set
			capital           = excluded.capital,
			region            = excluded.region,
			population        = excluded.population,
			currency_code     = excluded.currency_code,
			exchange_rate     = excluded.exchange_rate,
			estimated_gdp     = excluded.estimated_gdp,
			flag_url          = excluded.flag_url,
			last_refreshed_at = excluded.last_refreshed_at`,
	ensureMetadata: `insert or ignore into refresh_metadata (id, total_countries, last_refreshed_at) values (1, 0, null)`,
	upsertMetadata: `
		insert into refresh_metadata (id, total_countries, last_refreshed_at) values (1, ?, ?)
		on conflict (id) do update set
			total_countries   = excluded.total_countries,
			last_refreshed_at = excluded.last_refreshed_at`,
	// decimals are text in sqlite, so order numerically
	topByGDP: `
		select name, estimated_gdp
		from countries
		where estimated_gdp is not null
		order by cast(estimated_gdp as real) desc, name
		limit ?`,
}
