package sqlinline

const QInsertThumbnail = `--sql 324b508b-ace5-47a6-ab51-d14b76981d6e
insert into thumbnails(
  id,
  user_id,
  title,
  style,
  aspect_ratio,
  color_scheme,
  user_prompt,
  text_overlay,
  prompt_used,
  image_url,
  image_key,
  is_generating,
  error_message,
  created_at,
  updated_at
)
values (
  gen_random_uuid(),
  $1::uuid,
  $2::text,
  $3::text,
  $4::text,
  $5::text,
  $6::text,
  $7::boolean,
  $8::text,
  '',
  '',
  true,
  '',
  now(),
  now()
)
returning id, user_id, title, style, aspect_ratio, color_scheme, user_prompt, text_overlay,
          prompt_used, image_url, image_key, is_generating, error_message, created_at, updated_at;
`

// Re-attaching the same URL leaves updated_at untouched.
const QAttachThumbnailResult = `--sql 40fb393b-98e3-4dff-bc68-3cc02b5a7863
update thumbnails
set image_url = $2::text,
    image_key = $3::text,
    is_generating = false,
    error_message = '',
    updated_at = case
      when image_url = $2::text and image_key = $3::text and not is_generating then updated_at
      else now()
    end
where id = $1::uuid
returning id, user_id, title, style, aspect_ratio, color_scheme, user_prompt, text_overlay,
          prompt_used, image_url, image_key, is_generating, error_message, created_at, updated_at;
`

const QListThumbnailsByOwner = `--sql c2cbd407-16f6-485f-a13d-38d6258347c2
select id, user_id, title, style, aspect_ratio, color_scheme, user_prompt, text_overlay,
       prompt_used, image_url, image_key, is_generating, error_message, created_at, updated_at
from thumbnails
where user_id = $1::uuid
order by created_at desc, id desc;
`

const QSelectThumbnailForOwner = `--sql 08e08c48-e4bf-4201-8325-bfbbecaba77c
select id, user_id, title, style, aspect_ratio, color_scheme, user_prompt, text_overlay,
       prompt_used, image_url, image_key, is_generating, error_message, created_at, updated_at
from thumbnails
where id = $1::uuid and user_id = $2::uuid
limit 1;
`

const QDeleteThumbnailForOwner = `--sql b95e845f-f939-43cf-929d-112043a29846
delete from thumbnails
where id = $1::uuid and user_id = $2::uuid
returning id, user_id, title, style, aspect_ratio, color_scheme, user_prompt, text_overlay,
          prompt_used, image_url, image_key, is_generating, error_message, created_at, updated_at;
`

const QMarkThumbnailFailed = `--sql 8ffd108a-db38-4105-969c-d4d06a3ef89e
update thumbnails
set is_generating = false,
    error_message = $2::text,
    updated_at = now()
where id = $1::uuid and is_generating;
`

const QFailStaleThumbnails = `--sql fa5d7567-bfef-43c7-91d8-e8331e33b2fb
update thumbnails
set is_generating = false,
    error_message = $2::text,
    updated_at = now()
where is_generating and created_at < $1::timestamptz;
`
